// Package world provides the canonical data model and the event-driven
// store that owns every agent, location, and item by id. All cross
// references are ids, never pointers; Apply is the only writer of game
// state once a world is loaded.
package world

// HungerStage tracks how long an agent has gone without eating.
type HungerStage string

const (
	HungerSated    HungerStage = "sated"
	HungerHungry   HungerStage = "hungry"
	HungerStarving HungerStage = "starving"
)

// Memory priority levels.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Memory status values.
const (
	MemoryActive       = "active"
	MemoryRecalled     = "recalled"
	MemoryArchived     = "archived"
	MemoryConsolidated = "consolidated"
)

// Goal status values.
const (
	GoalActive    = "active"
	GoalPending   = "pending"
	GoalDone      = "done"
	GoalCancelled = "cancelled"
)

// Hard caps on per-agent memory collections.
const (
	MaxMemories        = 1000
	MaxCoreMemories    = 50
	MaxGoals           = 100
	ArchiveBatch       = 50 // oldest memories archived when over MaxMemories
	DefaultSTMCapacity = 30
)

// DeadTag marks an agent as dead in its dynamic tag set.
const DeadTag = "dead"

// VantageTag grants one-hop visual perception regardless of edge status.
const VantageTag = "elevated_vantage_point"

// Memory is a long-term memory record.
type Memory struct {
	Text       string         `json:"text"`
	Tick       int            `json:"tick"`
	Priority   string         `json:"priority"`
	Status     string         `json:"status"`
	SourceID   string         `json:"source_id,omitempty"`
	Confidence float64        `json:"confidence"`
	IsSecret   bool           `json:"is_secret"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Goal is a structured intention carried by an agent.
type Goal struct {
	Text       string         `json:"text"`
	Type       string         `json:"type"`
	Priority   string         `json:"priority"`
	Status     string         `json:"status"`
	Payload    map[string]any `json:"payload,omitempty"`
	ExpiryTick *int           `json:"expiry_tick,omitempty"`
}

// PerceptionEvent is the compact projection of an Event stored in an
// agent's short-term memory buffer.
type PerceptionEvent struct {
	Kind       EventKind `json:"event_type"`
	Tick       int       `json:"tick"`
	ActorID    string    `json:"actor_id,omitempty"`
	TargetIDs  []string  `json:"target_ids,omitempty"`
	LocationID string    `json:"location_id,omitempty"`
	Payload    Payload   `json:"payload,omitempty"`
}

// TagSet holds the two disjoint tag collections carried by agents,
// locations, and items.
type TagSet struct {
	Inherent []string `json:"inherent"`
	Dynamic  []string `json:"dynamic"`
}

// HasInherent reports whether tag is in the inherent set.
func (t *TagSet) HasInherent(tag string) bool {
	for _, s := range t.Inherent {
		if s == tag {
			return true
		}
	}
	return false
}

// HasDynamic reports whether tag is in the dynamic set.
func (t *TagSet) HasDynamic(tag string) bool {
	for _, s := range t.Dynamic {
		if s == tag {
			return true
		}
	}
	return false
}

// AddDynamic appends tag to the dynamic set if not already present.
func (t *TagSet) AddDynamic(tag string) {
	if !t.HasDynamic(tag) {
		t.Dynamic = append(t.Dynamic, tag)
	}
}

// Agent is a living entity; the player is one agent designated as such.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	HP   int    `json:"hp"`

	Inventory []string          `json:"inventory"`
	Slots     map[string]string `json:"slots"` // slot name -> item instance id, "" when empty

	Attributes    map[string]int    `json:"attributes"`
	Skills        map[string]string `json:"skills"` // skill tag -> proficiency level
	Relationships map[string]string `json:"relationships"`
	Tags          TagSet            `json:"tags"`

	Memories        []Memory          `json:"memories"`
	CoreMemories    []Memory          `json:"core_memories"`
	Goals           []Goal            `json:"goals"`
	ShortTermMemory []PerceptionEvent `json:"short_term_memory"`
	KnownLocations  map[string]string `json:"known_locations,omitempty"`

	NextAvailableTick int         `json:"next_available_tick"`
	LastMealTick      int         `json:"last_meal_tick"`
	HungerStage       HungerStage `json:"hunger_stage"`
}

// IsDead reports whether the agent carries the dead tag. Dead agents are
// excluded from scheduling, combat targeting, and item handling.
func (a *Agent) IsDead() bool {
	return a.Tags.HasDynamic(DeadTag)
}

// Attribute returns the named attribute, defaulting to 10 when unset.
func (a *Agent) Attribute(name string) int {
	if v, ok := a.Attributes[name]; ok {
		return v
	}
	return 10
}

// HasItem reports whether the item id is in the agent's inventory.
func (a *Agent) HasItem(itemID string) bool {
	for _, id := range a.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveItem deletes the first occurrence of itemID from the inventory,
// reporting whether it was present.
func (a *Agent) RemoveItem(itemID string) bool {
	for i, id := range a.Inventory {
		if id == itemID {
			a.Inventory = append(a.Inventory[:i], a.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// LocationStatic is the authored, immutable part of a location. Its
// hex_connections seed the dynamic adjacency on load.
type LocationStatic struct {
	ID             string            `json:"id"`
	Description    string            `json:"description"`
	Tags           TagSet            `json:"tags"`
	HexConnections map[string]string `json:"hex_connections"` // direction key -> neighbor id
}

// Connection edge status values.
const (
	EdgeOpen   = "open"
	EdgeClosed = "closed"
)

// Connection is one side of a dynamic edge between two locations. Writes
// to one side must mirror the inverse direction on the reciprocal side.
type Connection struct {
	Status    string    `json:"status"`
	Direction Direction `json:"direction,omitempty"`
}

// LocationState is the mutable part of a location.
type LocationState struct {
	ID               string                 `json:"id"`
	Occupants        []string               `json:"occupants"`
	Items            []string               `json:"items"`
	Sublocations     []string               `json:"sublocations"`
	TransientEffects []string               `json:"transient_effects"`
	Connections      map[string]*Connection `json:"connections_state"` // neighbor id -> edge
}

// RemoveOccupant deletes agentID from the occupant list, reporting
// whether it was present.
func (l *LocationState) RemoveOccupant(agentID string) bool {
	for i, id := range l.Occupants {
		if id == agentID {
			l.Occupants = append(l.Occupants[:i], l.Occupants[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveItem deletes itemID from the location's item list, reporting
// whether it was present.
func (l *LocationState) RemoveItem(itemID string) bool {
	for i, id := range l.Items {
		if id == itemID {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return true
		}
	}
	return false
}

// ItemBlueprint describes a class of items.
type ItemBlueprint struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Weight       int      `json:"weight"`
	DamageDice   string   `json:"damage_dice"`
	DamageType   string   `json:"damage_type"`
	ArmourRating int      `json:"armour_rating"`
	SkillTag     string   `json:"skill_tag"`
	Properties   []string `json:"properties"`
}

// HasProperty reports whether the blueprint carries the named property.
func (b *ItemBlueprint) HasProperty(p string) bool {
	for _, s := range b.Properties {
		if s == p {
			return true
		}
	}
	return false
}

// ItemInstance is a concrete item. For a live instance exactly one of
// CurrentLocation or OwnerID is non-empty.
type ItemInstance struct {
	ID              string         `json:"id"`
	BlueprintID     string         `json:"blueprint_id"`
	CurrentLocation string         `json:"current_location,omitempty"`
	OwnerID         string         `json:"owner_id,omitempty"`
	ItemState       map[string]any `json:"item_state,omitempty"`
	Inventory       []string       `json:"inventory,omitempty"` // container contents
	Tags            TagSet         `json:"tags"`
}

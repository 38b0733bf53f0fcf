package tools

// NormalizeParams rewrites common parameter aliases into the canonical
// names the tools validate against, clamps speech content to 200
// characters, and floors durations at 1 tick. Both the command entry
// point and the planner run proposals through this before validation.
func NormalizeParams(tool string, p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	switch tool {
	case "move", "open", "close":
		if out.String("target_location") == "" {
			for _, alias := range []string{"location_id", "target", "to"} {
				if loc := out.String(alias); loc != "" {
					out["target_location"] = loc
					break
				}
			}
			if out.String("target_location") == "" {
				if ids, ok := out["target_ids"].([]any); ok && len(ids) > 0 {
					if s, ok := ids[0].(string); ok {
						out["target_location"] = s
					}
				}
			}
		}
	case "attack":
		if out.String("target_id") == "" {
			if s := out.String("target"); s != "" {
				out["target_id"] = s
			} else if ids, ok := out["target_ids"].([]any); ok && len(ids) > 0 {
				if s, ok := ids[0].(string); ok {
					out["target_id"] = s
				}
			}
		}
	case "give":
		if s := out.String("recipient_id"); s != "" {
			out["target_id"] = s
		}
	case "equip", "unequip":
		if out.String("slot") == "" {
			if s := out.String("equipment_slot"); s != "" {
				out["slot"] = s
			}
		}
	case "talk", "talk_loud", "scream", "interject":
		content, ok := out["content"].(string)
		if !ok {
			content = "..."
		} else if len(content) > 200 {
			content = content[:200]
		}
		out["content"] = content
	case "wait", "rest":
		if out.Int("ticks", 1) < 1 {
			out["ticks"] = 1
		}
	}
	return out
}

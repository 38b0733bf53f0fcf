// Command worldgen writes a seeded demo data/ tree.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/talgya/hamlet/internal/worldgen"
)

func main() {
	out := flag.String("out", "data", "output directory")
	seed := flag.Int64("seed", 42, "generation seed (0 = random)")
	radius := flag.Int("radius", 2, "hex patch radius")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := worldgen.GenConfig{Radius: *radius, Seed: *seed}
	w := worldgen.Generate(cfg)
	if err := worldgen.WriteData(w, *out); err != nil {
		slog.Error("world generation failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d locations, %d agents, %d items to %s\n",
		len(w.LocationsStatic), len(w.Agents), len(w.Items), *out)
}

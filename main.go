package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/olivierh59500/specks/internal/config"
)

func main() {
	configPath := flag.String("config", "", "YAML run configuration")
	preset := flag.String("preset", "config.json", "color matrix file for S (save) and L (load)")
	particles := flag.Int("particles", 0, "override particle count")
	colors := flag.Int("colors", 0, "override color count")
	seed := flag.Int64("seed", 0, "override random seed")
	width := flag.Int("width", 800, "window width")
	height := flag.Int("height", 800, "window height")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *particles > 0 {
		cfg.Particles = *particles
	}
	if *colors > 0 {
		cfg.Colors = *colors
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	system, flow, err := cfg.NewSystem()
	if err != nil {
		log.Fatal(err)
	}
	viewer := NewViewer(system, flow, cfg, *preset, *width, *height)

	// Set up Ebitengine game
	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Specks")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}

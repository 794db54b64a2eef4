// Command specks-headless runs a simulation without a window, prints a report and
// optionally records video, writes an energy chart and streams frames to websocket clients.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/olivierh59500/specks/internal/config"
	"github.com/olivierh59500/specks/internal/record"
	"github.com/olivierh59500/specks/internal/sim"
	"github.com/olivierh59500/specks/internal/stats"
	"github.com/olivierh59500/specks/internal/stream"
)

type options struct {
	configPath string
	ticks      int
	particles  int
	colors     int
	seed       int64
	every      int

	recordPath string
	width      int
	height     int
	chartPath  string
	serveAddr  string
	realtime   bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML run configuration")
	flag.IntVar(&o.ticks, "ticks", 600, "number of ticks to run")
	flag.IntVar(&o.particles, "particles", 0, "override particle count")
	flag.IntVar(&o.colors, "colors", 0, "override color count")
	flag.Int64Var(&o.seed, "seed", 0, "override random seed")
	flag.IntVar(&o.every, "every", 1, "sample, record and stream every N ticks")
	flag.StringVar(&o.recordPath, "record", "", "write an MJPEG AVI video to this path")
	flag.IntVar(&o.width, "width", 640, "video width")
	flag.IntVar(&o.height, "height", 640, "video height")
	flag.StringVar(&o.chartPath, "chart", "", "write a kinetic energy PNG chart to this path")
	flag.StringVar(&o.serveAddr, "serve", "", "stream frames to websocket clients on this address")
	flag.BoolVar(&o.realtime, "realtime", false, "pace ticks at the configured TPS")
	flag.Parse()
	if o.every < 1 {
		o.every = 1
	}
	return o
}

func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.particles > 0 {
		cfg.Particles = o.particles
	}
	if o.colors > 0 {
		cfg.Colors = o.colors
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	return cfg, cfg.Validate()
}

func main() {
	o := parseFlags()
	cfg, err := loadConfig(o)
	if err != nil {
		log.Fatal(err)
	}
	s, _, err := cfg.NewSystem()
	if err != nil {
		log.Fatal(err)
	}

	var recorder *record.Recorder
	if o.recordPath != "" {
		fps := max(cfg.TPS/o.every, 1)
		if recorder, err = record.NewRecorder(o.recordPath, o.width, o.height, fps); err != nil {
			log.Fatal(err)
		}
	}

	var hub *stream.Hub
	if o.serveAddr != "" {
		hub = stream.NewHub(stream.DefaultMaxClients)
		mux := http.NewServeMux()
		mux.Handle("/stream", hub)
		go func() {
			log.Printf("streaming on ws://%s/stream", o.serveAddr)
			if err := http.ListenAndServe(o.serveAddr, mux); err != nil {
				log.Fatal(err)
			}
		}()
	}

	history := run(s, cfg, o, recorder, hub)

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("recorded %d frames to %s", recorder.Frames(), o.recordPath)
	}
	if hub != nil {
		log.Printf("stream dropped %d frames", hub.Dropped())
		hub.Close()
	}
	if o.chartPath != "" {
		if err := record.WriteEnergyChart(o.chartPath, history); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote energy chart to %s", o.chartPath)
	}

	fmt.Fprintln(os.Stdout, report(s, cfg, history))
}

// run advances the system o.ticks times, sampling every o.every ticks
func run(s *sim.System, cfg config.Config, o options, recorder *record.Recorder, hub *stream.Hub) *stats.History {
	dt := cfg.Timestep()
	history := stats.NewHistory(o.ticks/o.every + 1)
	history.Add(stats.Measure(s, dt))

	var pace *time.Ticker
	if o.realtime {
		pace = time.NewTicker(time.Duration(float64(time.Second) * dt))
		defer pace.Stop()
	}

	start := time.Now()
	for i := 1; i <= o.ticks; i++ {
		s.Tick(dt)
		if i%o.every == 0 {
			history.Add(stats.Measure(s, dt))
			if recorder != nil {
				if err := recorder.Capture(s); err != nil {
					log.Fatal(err)
				}
			}
			if hub != nil {
				hub.Broadcast(stream.EncodeFrame(s))
			}
		}
		if pace != nil {
			<-pace.C
		}
	}
	elapsed := time.Since(start)
	log.Printf("ran %d ticks of %d particles in %v (%.1f ticks/s)",
		o.ticks, s.NumParticles(), elapsed.Round(time.Millisecond), float64(o.ticks)/elapsed.Seconds())
	return history
}

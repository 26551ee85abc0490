// Command skyisles generates floating islands and lays them out along a
// spiral chain of cells.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/internal/debug"
	"github.com/Faultbox/skyisles/internal/island"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/internal/island/visual"
	"github.com/Faultbox/skyisles/internal/layout"
	"github.com/Faultbox/skyisles/internal/logger"
	"github.com/Faultbox/skyisles/internal/preview"
	"github.com/Faultbox/skyisles/pkg/noise"
	"github.com/Faultbox/skyisles/pkg/rng"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const mapSize = 1024

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("starting skyisles",
		zap.String("command", command),
		zap.Int64("seed", cfg.Seed))

	switch command {
	case "island":
		err = cmdIsland(cfg, args[1:])
	case "rebuild":
		err = cmdRebuild(cfg, args[1:])
	case "layout":
		err = cmdLayout(cfg)
	case "serve":
		err = cmdServe(cfg)
	case "config":
		err = cmdConfig(cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skyisles - Floating island generator

Usage:
  skyisles [flags] <command> [arguments]

Commands:
  island [hint]       Generate one island and print its summary as YAML
                      (hint: people, defense, food or danger)
  rebuild <file>      Rebuild an island from a saved summary and print the new summary
  layout              Generate the cell layout and print it as YAML
  serve               Stream the layout to a browser viewer over WebSocket
  config [show|save]  Print the effective config or save it to the config directory
  help                Show this help

Flags:
  -config <path>      Config file (default: ./skyisles.yaml, then the config directory)
  -seed <n>           Random seed
  -repetitions <n>    Times the layout sequence repeats
  -map <dir>          Write a top-down PNG map after "layout"
  -addr <addr>        Preview server address for "serve"
  -stage-delay <d>    Pause between pipeline stages, e.g. 250ms
  -debug              Enable debug logging
  -log-file <path>    Also log to a rotating file

Examples:
  skyisles island food > isle.yaml
  skyisles rebuild isle.yaml
  skyisles -seed 42 -map ./maps layout
  skyisles -stage-delay 200ms serve`)
}

func newSources(cfg *config.Config) (*rng.RNG, noise.Field) {
	nc := cfg.Noise
	return rng.New(cfg.Seed), noise.New(cfg.Seed, nc.Octaves, nc.Persistence, nc.Lacunarity)
}

func cmdIsland(cfg *config.Config, args []string) error {
	hint := stats.None
	if len(args) > 0 {
		a, err := stats.ParseAffinity(args[0])
		if err != nil {
			return err
		}
		hint = a
	}

	r, field := newSources(cfg)
	p, err := island.New("island", island.Deps{
		Config: cfg,
		RNG:    r,
		Noise:  field,
		Sink:   island.Discard,
		Log:    logger.Named("island"),
	})
	if err != nil {
		return err
	}
	if err := p.Create(hint); err != nil {
		return err
	}

	summary := p.Export()
	logger.Info("island created",
		zap.Stringer("affinity", summary.Affinity),
		zap.Int("placements", summary.Placements),
		zap.Strings("traits", p.Evaluate().Traits))
	return summary.WriteYAML(os.Stdout)
}

func cmdRebuild(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("rebuild needs a summary file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	saved, err := island.ReadSummary(f)
	f.Close()
	if err != nil {
		return err
	}

	nc := cfg.Noise
	p, err := island.New(saved.ID, island.Deps{
		Config: cfg,
		RNG:    rng.New(saved.Seed),
		Noise:  noise.New(saved.Seed, nc.Octaves, nc.Persistence, nc.Lacunarity),
		Sink:   island.Discard,
		Log:    logger.Named("island"),
	})
	if err != nil {
		return err
	}
	p.SetParams(saved.Params(cfg.Island.Colors))
	if err := p.Run(saved.Affinity); err != nil {
		return err
	}

	summary := p.Export()
	logger.Info("island rebuilt",
		zap.String("id", saved.ID),
		zap.Stringer("saved_affinity", saved.Affinity),
		zap.Stringer("affinity", summary.Affinity))
	return summary.WriteYAML(os.Stdout)
}

func cmdLayout(cfg *config.Config) error {
	r, field := newSources(cfg)
	gen, err := layout.NewGenerator(layout.Deps{
		Config: cfg,
		RNG:    r,
		Noise:  field,
		Sink:   island.Discard,
		Log:    logger.Named("layout"),
	})
	if err != nil {
		return err
	}
	graph, err := gen.Generate()
	if err != nil {
		return err
	}

	if dir := config.MapDir(); dir != "" {
		img := debug.RenderMap(mapDiscs(graph), mapSize)
		path, err := debug.NewMapWriter(dir, fmt.Sprintf("layout_%d", cfg.Seed)).Write(img)
		if err != nil {
			return fmt.Errorf("writing map: %w", err)
		}
		logger.Info("map written", zap.String("path", path))
	}

	return layout.WriteReport(os.Stdout, graph)
}

func mapDiscs(graph *layout.Graph) []debug.Disc {
	var discs []debug.Disc
	for _, c := range graph.Cells() {
		for _, isl := range c.Islands {
			pos := isl.Pipeline.Transform().Position
			discs = append(discs, debug.Disc{
				X:      pos.X,
				Z:      pos.Z,
				Radius: isl.Radius(),
				Color:  visual.TintColor(isl.Pipeline.Stats()),
			})
		}
	}
	return discs
}

func cmdServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := preview.NewServer(logger.Named("preview"))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(ctx, cfg.Preview.Addr)
	}()

	r, field := newSources(cfg)
	gen, err := layout.NewGenerator(layout.Deps{
		Config: cfg,
		RNG:    r,
		Noise:  field,
		Sink:   server,
		Cells:  server,
		Hook:   island.PacedHook(cfg.Preview.StageDelay),
		Log:    logger.Named("layout"),
	})
	if err != nil {
		stop()
		return errors.Join(err, <-serveErr)
	}
	if _, err := gen.Generate(); err != nil {
		stop()
		return errors.Join(err, <-serveErr)
	}
	logger.Info("layout ready, press Ctrl+C to stop", zap.String("addr", cfg.Preview.Addr))

	return <-serveErr
}

func cmdConfig(cfg *config.Config, args []string) error {
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "save":
		if len(args) > 1 {
			return cfg.SaveTo(args[1])
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
		return nil
	default:
		return fmt.Errorf("unknown config action %q", action)
	}
}

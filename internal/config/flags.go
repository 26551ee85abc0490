package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagSeed        = flag.Int64("seed", 0, "Random seed (0 keeps the configured seed)")
	flagRepetitions = flag.Int("repetitions", 0, "Number of times the layout sequence repeats")
	flagAddr        = flag.String("addr", "", "Preview server listen address")
	flagStageDelay  = flag.Duration("stage-delay", 0, "Pause between pipeline stages")
	flagLogFile     = flag.String("log-file", "", "Write logs to a rotating file")
	flagMap         = flag.String("map", "", "Directory for a top-down PNG map of the layout")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// MapDir returns the map output directory if provided via --map flag.
func MapDir() string {
	return *flagMap
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.Seed = *flagSeed
	}
	if *flagRepetitions > 0 {
		cfg.Layout.Repetitions = *flagRepetitions
	}
	if *flagAddr != "" {
		cfg.Preview.Addr = *flagAddr
	}
	if *flagStageDelay > 0 {
		cfg.Preview.StageDelay = *flagStageDelay
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}

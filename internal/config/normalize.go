package config

import (
	"os"
	"strings"
)

// PhaseEnv overrides profiling.phase when set.
const PhaseEnv = "PGOEXAMPLE_PHASE"

func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	if cfg.Storage.FilesDir == "" {
		cfg.Storage.FilesDir = DefaultFilesDir
	}
	cfg.Profiling.Phase = strings.ToLower(strings.TrimSpace(cfg.Profiling.Phase))
	if cfg.Profiling.Phase == "" {
		cfg.Profiling.Phase = PhaseGenerate
	}
	if cfg.Profiling.FileName == "" {
		cfg.Profiling.FileName = DefaultProfileFileName
	}
	if cfg.Profiling.TopN == 0 {
		cfg.Profiling.TopN = DefaultTopN
	}
	if cfg.Bench.Size == 0 {
		cfg.Bench.Size = DefaultBenchSize
	}
	if cfg.Bench.Cycles == 0 {
		cfg.Bench.Cycles = DefaultBenchCycles
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	return cfg
}

// ApplyEnv layers environment overrides on top of a loaded config.
func ApplyEnv(cfg Config) Config {
	if v, ok := os.LookupEnv(PhaseEnv); ok && strings.TrimSpace(v) != "" {
		cfg.Profiling.Phase = strings.ToLower(strings.TrimSpace(v))
	}
	return cfg
}

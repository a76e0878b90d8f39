package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var allowedPhases = map[string]struct{}{
	PhaseGenerate: {},
	PhaseUse:      {},
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("DOC_CONFIG_VERSION: unsupported version %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Storage.FilesDir) == "" {
		return fmt.Errorf("DOC_CONFIG_STORAGE: missing files dir")
	}
	if _, ok := allowedPhases[cfg.Profiling.Phase]; !ok {
		return fmt.Errorf("PGO_CONFIG_PHASE: invalid phase %q; use %q or %q", cfg.Profiling.Phase, PhaseGenerate, PhaseUse)
	}
	name := cfg.Profiling.FileName
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("PGO_CONFIG_FILE: profile file name %q must be a bare file name", name)
	}
	if cfg.Profiling.TopN < 0 {
		return fmt.Errorf("PGO_CONFIG_TOPN: top_n must not be negative")
	}
	if cfg.Bench.Size < 2 || cfg.Bench.Size&(cfg.Bench.Size-1) != 0 {
		return fmt.Errorf("BENCH_CONFIG_SIZE: size %d must be a power of two >= 2", cfg.Bench.Size)
	}
	if cfg.Bench.Cycles < 1 {
		return fmt.Errorf("BENCH_CONFIG_CYCLES: cycles must be positive")
	}
	if _, ok := allowedLogLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: invalid level %q", cfg.Logging.Level)
	}
	if _, ok := allowedLogFormats[cfg.Logging.Format]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: invalid format %q", cfg.Logging.Format)
	}
	return nil
}

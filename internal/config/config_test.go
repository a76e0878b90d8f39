package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Profiling.FileName != "profile.pgo" {
		t.Fatalf("expected default profile file name, got %q", cfg.Profiling.FileName)
	}
	if cfg.Bench.Cycles != 8192 {
		t.Fatalf("expected 8192 default cycles, got %d", cfg.Bench.Cycles)
	}
}

func TestEnsureCreatesAndLoadsConfig(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.toml")
	cfg, err := Ensure(path)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if cfg.Version != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, cfg.Version)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Profiling.Phase != PhaseGenerate {
		t.Fatalf("expected generate phase, got %q", loaded.Profiling.Phase)
	}
}

func TestLoadNormalizesPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := "version = 1\n[profiling]\nphase = \"USE\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Profiling.Phase != PhaseUse {
		t.Fatalf("expected use phase, got %q", cfg.Profiling.Phase)
	}
	if cfg.Bench.Size != DefaultBenchSize || cfg.Storage.FilesDir != DefaultFilesDir {
		t.Fatalf("expected defaults to be filled, got %+v", cfg)
	}
}

func TestLoadKeepsAuditDefaultWhenKeyIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = 1\n[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Logging.Audit {
		t.Fatalf("audit should stay enabled when the key is absent")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}

	if err := os.WriteFile(path, []byte("version = 1\n[logging]\naudit = false\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Logging.Audit {
		t.Fatalf("explicit audit = false should be kept")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "DOC_CONFIG_PARSE") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"PGO_CONFIG_PHASE":    func(c *Config) { c.Profiling.Phase = "train" },
		"PGO_CONFIG_FILE":     func(c *Config) { c.Profiling.FileName = "../profile.pgo" },
		"BENCH_CONFIG_SIZE":   func(c *Config) { c.Bench.Size = 1000 },
		"BENCH_CONFIG_CYCLES": func(c *Config) { c.Bench.Cycles = -1 },
		"DOC_CONFIG_LOGGING":  func(c *Config) { c.Logging.Format = "xml" },
	}
	for code, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		err := Validate(cfg)
		if err == nil || !strings.HasPrefix(err.Error(), code) {
			t.Fatalf("expected %s error, got %v", code, err)
		}
	}
}

func TestApplyEnvOverridesPhase(t *testing.T) {
	t.Setenv(PhaseEnv, " Use ")
	cfg := ApplyEnv(DefaultConfig())
	if cfg.Profiling.Phase != PhaseUse {
		t.Fatalf("expected env override, got %q", cfg.Profiling.Phase)
	}
}

func TestResolveFilesDirExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := DefaultConfig()
	dir, err := ResolveFilesDir(cfg)
	if err != nil {
		t.Fatalf("resolve files dir: %v", err)
	}
	want := filepath.Join(home, ".pgoexample", "files")
	if dir != want {
		t.Fatalf("files dir = %q, want %q", dir, want)
	}
}

package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCLIEndToEndProfileFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the CLI")
	}
	home := t.TempDir()
	bin, env := buildCLI(t, home)
	cfgPath := filepath.Join(home, ".pgoexample", "config.toml")
	filesDir := filepath.Join(home, "files")
	common := []string{"--config", cfgPath, "--files-dir", filesDir}

	out := runCLI(t, bin, env, append(common, "path")...)
	profile := filepath.Join(filesDir, "profile.pgo")
	assertContains(t, out, profile)

	out = runCLI(t, bin, env, append(common, "run")...)
	assertContains(t, out, "Profiling started: used: ")
	if _, err := os.Stat(profile); err != nil {
		t.Fatalf("expected profile to exist: %v", err)
	}

	out = runCLI(t, bin, env, append(common, "--phase", "use", "run")...)
	assertContains(t, out, "Profiling ready: used: ")

	out = runCLI(t, bin, env, append(common, "doctor")...)
	assertContains(t, out, "healthy")

	out = runCLIExpectFail(t, bin, env, append(common, "merge", profile)...)
	assertContains(t, out, "--output is required")

	if _, err := os.Stat(filepath.Join(home, ".pgoexample", "audit.log")); err != nil {
		t.Fatalf("expected audit log: %v", err)
	}
}

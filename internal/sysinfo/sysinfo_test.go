package sysinfo

import (
	"context"
	"runtime"
	"testing"
)

func TestCollectFillsRuntimeFields(t *testing.T) {
	info := Collect(context.Background())
	if info.GoVersion != runtime.Version() {
		t.Fatalf("go version = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.GOOS != runtime.GOOS || info.GOARCH != runtime.GOARCH {
		t.Fatalf("unexpected platform %s/%s", info.GOOS, info.GOARCH)
	}
	if info.LogicalCores < 1 {
		t.Fatalf("expected at least one core, got %d", info.LogicalCores)
	}
}

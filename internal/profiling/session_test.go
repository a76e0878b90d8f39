package profiling

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime/pprof"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files", "profile.pgo")
	s := NewSession()

	require.NoError(t, s.Start(path))
	assert.True(t, s.Active())
	assert.Equal(t, path, s.Path())

	rec, err := s.Stop()
	require.NoError(t, err)
	assert.False(t, s.Active())
	assert.Equal(t, path, rec.Path)
	assert.Positive(t, rec.Bytes, "pprof always writes a header")

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Bytes, fi.Size())
	assert.NoFileExists(t, LockPath(path))
}

func TestSession_FailedStartKeepsExistingProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.pgo")
	require.NoError(t, os.WriteFile(path, []byte("previous good profile"), 0o644))

	// The CPU profiler is process global; holding it makes Start fail.
	var buf bytes.Buffer
	require.NoError(t, pprof.StartCPUProfile(&buf))
	t.Cleanup(pprof.StopCPUProfile)

	s := NewSession()
	err := s.Start(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PGO_SESSION_START")
	assert.False(t, s.Active())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous good profile", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp and lock files are removed")
	assert.Equal(t, "profile.pgo", entries[0].Name())
}

func TestSession_StopReplacesExistingProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.pgo")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	s := NewSession()
	require.NoError(t, s.Start(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stale", string(data), "target untouched while recording")

	rec, err := s.Stop()
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(data))
	assert.Equal(t, rec.Bytes, int64(len(data)))
}

func TestSession_StartWhileActive(t *testing.T) {
	dir := t.TempDir()
	s := NewSession()
	require.NoError(t, s.Start(filepath.Join(dir, "a.pgo")))
	t.Cleanup(func() { _, _ = s.Stop() })

	err := s.Start(filepath.Join(dir, "b.pgo"))
	assert.ErrorIs(t, err, ErrActive)
	assert.Equal(t, filepath.Join(dir, "a.pgo"), s.Path())
}

func TestSession_StopIdleIsNoop(t *testing.T) {
	s := NewSession()
	rec, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, Recording{}, rec)
	assert.Empty(t, s.Path())
}

func TestSession_RepeatedCycles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.pgo")
	s := NewSession()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Start(path), "cycle %d", i)
		_, err := s.Stop()
		require.NoError(t, err, "cycle %d", i)
	}
}

func TestSession_LockedByOtherHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.pgo")
	other := flock.New(LockPath(path))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = other.Unlock() })

	s := NewSession()
	assert.ErrorIs(t, s.Start(path), ErrLocked)
	assert.False(t, s.Active())
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("use")
	require.NoError(t, err)
	assert.Equal(t, PhaseUse, p)

	_, err = ParsePhase("train")
	assert.Error(t, err)
}

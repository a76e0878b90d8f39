// Package profiling records Go CPU profiles in the pprof format consumed by
// `go build -pgo`.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio"
)

var (
	// ErrActive is returned when Start is called while a recording is in progress.
	ErrActive = errors.New("PGO_SESSION_ACTIVE: a CPU profile is already being recorded")
	// ErrLocked is returned when another process holds the profile file.
	ErrLocked = errors.New("PGO_SESSION_LOCKED: profile file is locked by another session")
)

// Phase selects whether the workload is run to train a profile or with one.
type Phase string

const (
	PhaseGenerate Phase = "generate"
	PhaseUse      Phase = "use"
)

func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseGenerate, PhaseUse:
		return Phase(s), nil
	default:
		return "", fmt.Errorf("PGO_PHASE: unknown phase %q", s)
	}
}

// Recording describes a finished CPU profile.
type Recording struct {
	Path     string        `json:"path"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"durationNs"`
	Bytes    int64         `json:"bytes"`
}

type recording struct {
	path    string
	file    *renameio.PendingFile
	lock    *flock.Flock
	started time.Time
}

// Session owns the process-wide CPU profiler. Only one recording can be
// active at a time; Start/Stop cycles may be repeated.
type Session struct {
	mu     sync.Mutex
	active *recording
}

func NewSession() *Session {
	return &Session{}
}

// LockPath is the advisory lock taken while path is being written.
func LockPath(path string) string {
	return path + ".lock"
}

// Start records into a temporary file next to path. An existing profile at
// path is only replaced once Stop succeeds.
func (s *Session) Start(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrActive
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("PGO_SESSION_DIR: %w", err)
	}

	lock := flock.New(LockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("PGO_SESSION_LOCK: %w", err)
	}
	if !locked {
		return ErrLocked
	}

	f, err := renameio.TempFile(dir, path)
	if err != nil {
		_ = releaseLock(lock)
		return fmt.Errorf("PGO_SESSION_CREATE: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Cleanup()
		_ = releaseLock(lock)
		return fmt.Errorf("PGO_SESSION_CREATE: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Cleanup()
		_ = releaseLock(lock)
		return fmt.Errorf("PGO_SESSION_START: %w", err)
	}
	s.active = &recording{path: path, file: f, lock: lock, started: time.Now()}
	return nil
}

// Stop flushes the active profile and moves it over the target path.
// Stopping an idle session is a no-op and returns a zero Recording.
func (s *Session) Stop() (Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.active
	if rec == nil {
		return Recording{}, nil
	}
	s.active = nil

	pprof.StopCPUProfile()
	out := Recording{Path: rec.path, Started: rec.started, Duration: time.Since(rec.started)}

	var errs []error
	if fi, err := rec.file.Stat(); err == nil {
		out.Bytes = fi.Size()
	}
	if err := rec.file.CloseAtomicallyReplace(); err != nil {
		errs = append(errs, fmt.Errorf("PGO_SESSION_REPLACE: %w", err))
		_ = rec.file.Cleanup()
	}
	if err := releaseLock(rec.lock); err != nil {
		errs = append(errs, fmt.Errorf("PGO_SESSION_UNLOCK: %w", err))
	}
	return out, errors.Join(errs...)
}

// releaseLock unlocks and removes the lock file. A lock file that is
// already gone is not an error.
func releaseLock(lock *flock.Flock) error {
	if err := lock.Unlock(); err != nil {
		return err
	}
	if err := os.Remove(lock.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Path returns the file being recorded, or "" when idle.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.path
}

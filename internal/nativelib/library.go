// Package nativelib implements the profiling library loaded behind the
// harness boundary: it points the CPU profiler at the requested file, runs
// the FFT workload and reports how long it took.
package nativelib

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"pgoexample/internal/audit"
	"pgoexample/internal/bench"
	"pgoexample/internal/profiling"
)

const (
	TagStarted = "Profiling started"
	TagReady   = "Profiling ready"
	TagFailed  = "Profiling failed"
)

type Options struct {
	Phase   profiling.Phase
	Bench   bench.Options
	Session *profiling.Session
	Logger  *slog.Logger
	Audit   *audit.Logger
	// Context bounds the workload; nil means context.Background().
	Context context.Context
}

// Report is the outcome of the most recent start/stop pair.
type Report struct {
	Phase     profiling.Phase      `json:"phase"`
	Profile   string               `json:"profile"`
	Text      string               `json:"text"`
	Bench     *bench.Result        `json:"bench,omitempty"`
	Recording *profiling.Recording `json:"recording,omitempty"`
	Error     string               `json:"error,omitempty"`
}

type Library struct {
	opts Options

	mu sync.Mutex
	// recording is set while this library owns the session's active profile.
	recording bool
	last      Report
}

func New(opts Options) *Library {
	if opts.Phase == "" {
		opts.Phase = profiling.PhaseGenerate
	}
	if opts.Session == nil {
		opts.Session = profiling.NewSession()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Library{opts: opts}
}

func (l *Library) tag() string {
	if l.opts.Phase == profiling.PhaseGenerate {
		return TagStarted
	}
	return TagReady
}

// StartProfiling begins recording to profileFile (generate phase only), runs
// the workload and returns the line to display.
func (l *Library) StartProfiling(profileFile string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = Report{Phase: l.opts.Phase, Profile: profileFile}
	log := l.opts.Logger.With("phase", string(l.opts.Phase), "profile", profileFile)

	if l.opts.Phase == profiling.PhaseGenerate {
		if err := l.opts.Session.Start(profileFile); err != nil {
			return l.fail(log, "startProfiling", err)
		}
		l.recording = true
		log.Debug("cpu profile started")
	}

	res, err := bench.Run(l.opts.Context, l.opts.Bench)
	if err != nil {
		return l.fail(log, "startProfiling", err)
	}
	l.last.Bench = &res
	l.last.Text = fmt.Sprintf("%s: %s", l.tag(), res)
	log.Info("workload finished", "elapsed_ms", res.Millis(), "flops", res.Flops, "cycles", res.Cycles)
	l.record(audit.Event{
		Operation: "startProfiling",
		Status:    audit.StatusOK,
		Message:   l.last.Text,
		Fields: map[string]string{
			"size":   strconv.Itoa(res.Size),
			"cycles": strconv.Itoa(res.Cycles),
		},
	})
	return l.last.Text
}

// StopProfiling flushes the profile started by StartProfiling to disk. It is
// a no-op in the use phase or when starting failed.
func (l *Library) StopProfiling() {
	l.mu.Lock()
	defer l.mu.Unlock()
	log := l.opts.Logger.With("phase", string(l.opts.Phase))
	if !l.recording {
		log.Debug("stop profiling with no active recording")
		return
	}
	l.recording = false
	rec, err := l.opts.Session.Stop()
	if err != nil {
		log.Error("stop profiling failed", "err", err)
		l.last.Error = err.Error()
		l.record(audit.Event{Operation: "stopProfiling", Status: audit.StatusFailed, Profile: rec.Path, Message: err.Error()})
		return
	}
	l.last.Recording = &rec
	log.Info("cpu profile written", "profile", rec.Path, "bytes", rec.Bytes, "duration", rec.Duration)
	l.record(audit.Event{
		Operation: "stopProfiling",
		Status:    audit.StatusOK,
		Profile:   rec.Path,
		Fields:    map[string]string{"bytes": strconv.FormatInt(rec.Bytes, 10)},
	})
}

// Last returns the report of the latest start/stop pair.
func (l *Library) Last() Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *Library) fail(log *slog.Logger, op string, err error) string {
	log.Error(op+" failed", "err", err)
	l.last.Error = err.Error()
	l.last.Text = fmt.Sprintf("%s: %v", TagFailed, err)
	l.record(audit.Event{Operation: op, Status: audit.StatusFailed, Message: err.Error()})
	return l.last.Text
}

func (l *Library) record(ev audit.Event) {
	ev.Phase = string(l.opts.Phase)
	if ev.Profile == "" {
		ev.Profile = l.last.Profile
	}
	if err := l.opts.Audit.Log(ev); err != nil {
		l.opts.Logger.Warn("audit log write failed", "err", err)
	}
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"pgoexample/internal/audit"
	"pgoexample/internal/bench"
	"pgoexample/internal/config"
	"pgoexample/internal/doctor"
	"pgoexample/internal/harness"
	"pgoexample/internal/logging"
	"pgoexample/internal/nativelib"
	"pgoexample/internal/pgo"
	"pgoexample/internal/profiling"
	"pgoexample/internal/sysinfo"
)

type Options struct {
	ConfigPath string
	// FilesDir and Phase override the config file when non-empty.
	FilesDir string
	Phase    string
	// LogOutput receives structured logs; nil means os.Stderr.
	LogOutput io.Writer
}

type Service struct {
	ConfigPath string
	Config     config.Config
	FilesDir   string
	Phase      profiling.Phase

	Logger  *slog.Logger
	Audit   *audit.Logger
	Session *profiling.Session
	Doctor  *doctor.Service
}

// RunReport is what a single creation event produced.
type RunReport struct {
	Text    string           `json:"text"`
	Profile string           `json:"profile"`
	Result  nativelib.Report `json:"result"`
	Host    sysinfo.Info     `json:"host"`
	Summary *pgo.Summary     `json:"summary,omitempty"`
}

func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Ensure(configPath)
	if err != nil {
		return nil, err
	}
	cfg = config.ApplyEnv(cfg)
	if opts.Phase != "" {
		cfg.Profiling.Phase = strings.ToLower(strings.TrimSpace(opts.Phase))
	}
	if opts.FilesDir != "" {
		cfg.Storage.FilesDir = opts.FilesDir
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	phase, err := profiling.ParsePhase(cfg.Profiling.Phase)
	if err != nil {
		return nil, err
	}
	filesDir, err := config.ResolveFilesDir(cfg)
	if err != nil {
		return nil, err
	}

	logOut := opts.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	logger, err := logging.New(cfg.Logging, logOut)
	if err != nil {
		return nil, err
	}
	var auditLogger *audit.Logger
	if cfg.Logging.Audit {
		auditLogger = audit.New(config.AuditPath(configPath))
	}

	svc := &Service{
		ConfigPath: configPath,
		Config:     cfg,
		FilesDir:   filesDir,
		Phase:      phase,
		Logger:     logger,
		Audit:      auditLogger,
		Session:    profiling.NewSession(),
	}
	svc.Doctor = &doctor.Service{
		ConfigPath:  configPath,
		FilesDir:    filesDir,
		ProfilePath: svc.ProfilePath(),
	}
	return svc, nil
}

func (s *Service) ProfilePath() string {
	return s.harness(nil, nil).ProfilePath()
}

func (s *Service) harness(lib harness.Library, view harness.Display) *harness.Harness {
	return &harness.Harness{
		FilesDir: s.FilesDir,
		FileName: s.Config.Profiling.FileName,
		Lib:      lib,
		View:     view,
	}
}

// Library returns the profiling library configured for this service. All
// libraries share the service's profiling session.
func (s *Service) Library(ctx context.Context) *nativelib.Library {
	return nativelib.New(nativelib.Options{
		Phase:   s.Phase,
		Bench:   bench.Options{Size: s.Config.Bench.Size, Cycles: s.Config.Bench.Cycles},
		Session: s.Session,
		Logger:  s.Logger,
		Audit:   s.Audit,
		Context: ctx,
	})
}

// Run performs one creation event: start profiling, render the result into
// view, stop profiling. In the generate phase the written profile is
// inspected afterwards.
func (s *Service) Run(ctx context.Context, view harness.Display) (RunReport, error) {
	lib := s.Library(ctx)
	h := s.harness(lib, view)
	text := h.OnCreate()
	report := RunReport{
		Text:    text,
		Profile: h.ProfilePath(),
		Result:  lib.Last(),
		Host:    sysinfo.Collect(ctx),
	}
	if s.Phase == profiling.PhaseGenerate && report.Result.Recording != nil {
		summary, err := pgo.Inspect(report.Profile, s.Config.Profiling.TopN)
		if err != nil {
			// Short runs may not collect a single sample.
			s.Logger.Warn("profile not usable for pgo yet", "profile", report.Profile, "err", err)
		} else {
			report.Summary = &summary
		}
	}
	if report.Result.Error != "" {
		return report, fmt.Errorf("PGO_RUN: %s", report.Result.Error)
	}
	return report, nil
}

func (s *Service) Inspect(path string, topN int) (pgo.Summary, error) {
	if path == "" {
		path = s.ProfilePath()
	}
	if topN == 0 {
		topN = s.Config.Profiling.TopN
	}
	return pgo.Inspect(path, topN)
}

func (s *Service) Merge(out string, inputs []string) (pgo.Summary, error) {
	summary, err := pgo.Merge(out, inputs...)
	status := audit.StatusOK
	msg := ""
	if err != nil {
		status, msg = audit.StatusFailed, err.Error()
	}
	if logErr := s.Audit.Log(audit.Event{Operation: "merge", Status: status, Profile: out, Message: msg, Fields: map[string]string{"inputs": strings.Join(inputs, ",")}}); logErr != nil {
		s.Logger.Warn("audit log write failed", "err", logErr)
	}
	return summary, err
}

func (s *Service) DoctorRun(ctx context.Context) doctor.Report {
	return s.Doctor.Run(ctx)
}

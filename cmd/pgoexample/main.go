package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"pgoexample/internal/app"
	"pgoexample/internal/harness"
	"pgoexample/internal/pgo"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ex ExitCoder
		if errors.As(err, &ex) {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var filesDir string
	var phase string
	var jsonOutput bool

	newSvc := func() (*app.Service, error) {
		return app.New(app.Options{ConfigPath: configPath, FilesDir: filesDir, Phase: phase})
	}

	cmd := &cobra.Command{
		Use:           "pgoexample",
		Short:         "Record and check CPU profiles for profile-guided optimization",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&filesDir, "files-dir", "", "override the private files directory")
	cmd.PersistentFlags().StringVar(&phase, "phase", "", "generate|use (overrides config and PGOEXAMPLE_PHASE)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(newRunCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newPathCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newInspectCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newMergeCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newDoctorCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func newRunCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"create", "train"},
		Short:   "Start profiling, run the workload, show the result and stop profiling",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if times < 1 {
				return &exitError{code: 2, msg: "--times must be at least 1"}
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			var view harness.Display
			if !*jsonOutput {
				view = &harness.TextView{W: cmd.OutOrStdout()}
			}
			reports := make([]app.RunReport, 0, times)
			for i := 0; i < times; i++ {
				report, err := svc.Run(cmd.Context(), view)
				reports = append(reports, report)
				if err != nil {
					if *jsonOutput {
						_ = print(true, reports, "")
					}
					return err
				}
			}
			if *jsonOutput {
				if times == 1 {
					return print(true, reports[0], "")
				}
				return print(true, reports, "")
			}
			last := reports[len(reports)-1]
			if last.Summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "profile %s: %d samples, %s cpu\n", last.Profile, last.Summary.Samples, last.Summary.TotalCPU.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&times, "times", 1, "number of creation events to run")
	return cmd
}

func newPathCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the profile file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			p := svc.ProfilePath()
			return print(*jsonOutput, map[string]string{"profile": p, "filesDir": svc.FilesDir}, p)
		},
	}
}

func newInspectCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:     "inspect [profile]",
		Aliases: []string{"show", "top"},
		Short:   "Validate a CPU profile and list its hottest functions",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			summary, err := svc.Inspect(path, topN)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, summary, "")
			}
			printSummary(cmd, summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&topN, "top", 0, "number of functions to list (default from config)")
	return cmd
}

func newMergeCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "merge <profile>...",
		Short: "Merge CPU profiles into a single PGO profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return &exitError{code: 2, msg: "--output is required"}
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			summary, err := svc.Merge(out, args)
			if err != nil {
				return err
			}
			return print(*jsonOutput, summary, fmt.Sprintf("merged %d profiles into %s (%d samples)", len(args), out, summary.Samples))
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "merged profile path, e.g. default.pgo")
	return cmd
}

func newDoctorCmd(newSvc func() (*app.Service, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"diag", "checkup"},
		Short:   "Run diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			report := svc.DoctorRun(cmd.Context())
			if *jsonOutput {
				if err := print(true, report, ""); err != nil {
					return err
				}
			} else {
				if report.Healthy {
					fmt.Fprintln(cmd.OutOrStdout(), "healthy")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "issues found:")
				}
				for _, f := range report.Findings {
					fmt.Fprintf(cmd.OutOrStdout(), "- [%s] %s\n", f.Code, f.Message)
				}
			}
			if !report.Healthy {
				return &exitError{code: 3, msg: "doctor found errors"}
			}
			return nil
		},
	}
}

func printSummary(cmd *cobra.Command, s pgo.Summary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d samples, %s cpu over %s\n", s.Path, s.Samples, s.TotalCPU.Round(time.Millisecond), s.Duration.Round(time.Millisecond))
	for _, f := range s.Top {
		pct := 0.0
		if s.TotalCPU > 0 {
			pct = 100 * float64(f.Flat) / float64(s.TotalCPU)
		}
		fmt.Fprintf(w, "%10s %6.2f%% %10s  %s\n", f.Flat.Round(time.Millisecond), pct, f.Cum.Round(time.Millisecond), f.Name)
	}
}

func print(jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
		return nil
	}
	if message != "" {
		fmt.Println(message)
	}
	return nil
}

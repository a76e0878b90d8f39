// Package pgo reads, validates and merges CPU profiles used for
// profile-guided optimization.
package pgo

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/pprof/profile"

	"pgoexample/internal/fsutil"
)

type FunctionStat struct {
	Name string        `json:"name"`
	Flat time.Duration `json:"flatNs"`
	Cum  time.Duration `json:"cumNs"`
}

type Summary struct {
	Path     string         `json:"path"`
	Samples  int            `json:"samples"`
	TotalCPU time.Duration  `json:"totalCpuNs"`
	Duration time.Duration  `json:"durationNs"`
	Top      []FunctionStat `json:"top"`
}

// Load parses path as a pprof profile.
func Load(path string) (*profile.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("PGO_OPEN: %w", err)
	}
	defer f.Close()
	p, err := profile.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("PGO_PARSE: %s: %w", path, err)
	}
	return p, nil
}

// cpuIndex finds the sample value carrying CPU nanoseconds.
func cpuIndex(p *profile.Profile) (int, error) {
	for i, st := range p.SampleType {
		if st.Type == "cpu" && st.Unit == "nanoseconds" {
			return i, nil
		}
	}
	return 0, fmt.Errorf("PGO_NOT_CPU: profile has no cpu/nanoseconds sample type")
}

// Validate checks that p can be used as a PGO input.
func Validate(p *profile.Profile) error {
	if err := p.CheckValid(); err != nil {
		return fmt.Errorf("PGO_INVALID: %w", err)
	}
	if _, err := cpuIndex(p); err != nil {
		return err
	}
	if len(p.Sample) == 0 {
		return fmt.Errorf("PGO_EMPTY: profile has no samples")
	}
	return nil
}

// Inspect loads and validates path and summarizes the hottest functions.
// topN <= 0 omits the function table.
func Inspect(path string, topN int) (Summary, error) {
	p, err := Load(path)
	if err != nil {
		return Summary{}, err
	}
	if err := Validate(p); err != nil {
		return Summary{}, err
	}
	s := Summarize(p, topN)
	s.Path = path
	return s, nil
}

func Summarize(p *profile.Profile, topN int) Summary {
	idx, err := cpuIndex(p)
	if err != nil {
		return Summary{Samples: len(p.Sample)}
	}
	flat := map[string]int64{}
	cum := map[string]int64{}
	var total int64
	for _, sm := range p.Sample {
		v := sm.Value[idx]
		total += v
		seen := map[string]struct{}{}
		for li, loc := range sm.Location {
			for k, line := range loc.Line {
				if line.Function == nil {
					continue
				}
				name := line.Function.Name
				// Line[0] of the leaf location is the innermost frame.
				if li == 0 && k == 0 {
					flat[name] += v
				}
				if _, ok := seen[name]; !ok {
					seen[name] = struct{}{}
					cum[name] += v
				}
			}
		}
	}

	stats := make([]FunctionStat, 0, len(cum))
	for name, c := range cum {
		stats = append(stats, FunctionStat{Name: name, Flat: time.Duration(flat[name]), Cum: time.Duration(c)})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Flat != stats[j].Flat {
			return stats[i].Flat > stats[j].Flat
		}
		if stats[i].Cum != stats[j].Cum {
			return stats[i].Cum > stats[j].Cum
		}
		return stats[i].Name < stats[j].Name
	})
	if topN <= 0 {
		stats = nil
	} else if len(stats) > topN {
		stats = stats[:topN]
	}
	return Summary{
		Samples:  len(p.Sample),
		TotalCPU: time.Duration(total),
		Duration: time.Duration(p.DurationNanos),
		Top:      stats,
	}
}

// Write encodes p and atomically replaces path.
func Write(path string, p *profile.Profile) error {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return fmt.Errorf("PGO_ENCODE: %w", err)
	}
	if err := fsutil.AtomicWrite(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("PGO_WRITE: %w", err)
	}
	return nil
}

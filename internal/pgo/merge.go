package pgo

import (
	"fmt"

	"github.com/google/pprof/profile"
)

// Merge combines the CPU profiles at inputs into a single profile written to out.
// Empty inputs are skipped; at least one input must carry samples.
func Merge(out string, inputs ...string) (Summary, error) {
	if len(inputs) == 0 {
		return Summary{}, fmt.Errorf("PGO_MERGE: no input profiles")
	}
	profiles := make([]*profile.Profile, 0, len(inputs))
	for _, in := range inputs {
		p, err := Load(in)
		if err != nil {
			return Summary{}, err
		}
		if err := p.CheckValid(); err != nil {
			return Summary{}, fmt.Errorf("PGO_INVALID: %s: %w", in, err)
		}
		if _, err := cpuIndex(p); err != nil {
			return Summary{}, fmt.Errorf("%w (%s)", err, in)
		}
		if len(p.Sample) == 0 {
			continue
		}
		profiles = append(profiles, p)
	}
	if len(profiles) == 0 {
		return Summary{}, fmt.Errorf("PGO_EMPTY: all input profiles are empty")
	}
	merged, err := profile.Merge(profiles)
	if err != nil {
		return Summary{}, fmt.Errorf("PGO_MERGE: %w", err)
	}
	if err := Write(out, merged); err != nil {
		return Summary{}, err
	}
	s := Summarize(merged, 0)
	s.Path = out
	return s, nil
}

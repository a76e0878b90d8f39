package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"pgoexample/internal/config"
	"pgoexample/internal/fsutil"
	"pgoexample/internal/pgo"
)

// MinPGOVersion is the first Go release whose toolchain accepts -pgo.
const MinPGOVersion = "v1.21"

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy   bool      `json:"healthy"`
	Findings  []Finding `json:"findings"`
	GoVersion string    `json:"goVersion"`
	Profile   string    `json:"profile,omitempty"`
}

type Service struct {
	ConfigPath  string
	FilesDir    string
	ProfilePath string
	// GoVersion defaults to runtime.Version().
	GoVersion string
}

func (s *Service) Run(ctx context.Context) Report {
	findings := []Finding{}
	if _, err := os.Stat(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_MISSING", Level: "error", Message: err.Error()})
	} else if _, err := config.Load(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_INVALID", Level: "error", Message: err.Error()})
	}

	if err := fsutil.EnsureWritableDir(s.FilesDir); err != nil {
		findings = append(findings, Finding{Code: "DOC_FILES_DIR", Level: "error", Message: err.Error()})
	}

	goVersion := s.GoVersion
	if goVersion == "" {
		goVersion = runtime.Version()
	}
	if f, ok := checkToolchain(goVersion); !ok {
		findings = append(findings, f)
	}

	if ctx.Err() == nil && s.ProfilePath != "" {
		if _, err := pgo.Inspect(s.ProfilePath, 0); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				findings = append(findings, Finding{Code: "PGO_PROFILE_MISSING", Level: "warn", Message: "no profile at " + s.ProfilePath + "; run in the generate phase first"})
			} else {
				findings = append(findings, Finding{Code: "PGO_PROFILE_INVALID", Level: "warn", Message: err.Error()})
			}
		}
	}

	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
			break
		}
	}
	return Report{Healthy: healthy, Findings: findings, GoVersion: goVersion, Profile: s.ProfilePath}
}

// toolchainSemver maps "go1.22.3" or "go1.21rc2" to a comparable semver.
func toolchainSemver(goVersion string) string {
	v := strings.TrimPrefix(strings.TrimSpace(goVersion), "go")
	end := 0
	for end < len(v) && (v[end] == '.' || (v[end] >= '0' && v[end] <= '9')) {
		end++
	}
	v = strings.TrimSuffix(v[:end], ".")
	if v == "" {
		return ""
	}
	return semver.Canonical("v" + v)
}

func checkToolchain(goVersion string) (Finding, bool) {
	v := toolchainSemver(goVersion)
	if !semver.IsValid(v) {
		return Finding{Code: "PGO_TOOLCHAIN_UNKNOWN", Level: "warn", Message: fmt.Sprintf("cannot parse toolchain version %q", goVersion)}, false
	}
	if semver.Compare(v, MinPGOVersion) < 0 {
		return Finding{Code: "PGO_TOOLCHAIN", Level: "error", Message: fmt.Sprintf("%s does not support -pgo; need %s or newer", goVersion, strings.TrimPrefix(MinPGOVersion, "v"))}, false
	}
	return Finding{}, true
}

package config

const (
	SchemaVersion = 1

	PhaseGenerate = "generate"
	PhaseUse      = "use"

	DefaultProfileFileName = "profile.pgo"
	DefaultFilesDir        = "~/.pgoexample/files"
	DefaultBenchSize       = 1024
	DefaultBenchCycles     = 1024 * 8
	DefaultTopN            = 10
)

// Build metadata, set with -ldflags "-X pgoexample/internal/config.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Storage: StorageConfig{
			FilesDir: DefaultFilesDir,
		},
		Profiling: ProfilingConfig{
			Phase:    PhaseGenerate,
			FileName: DefaultProfileFileName,
			TopN:     DefaultTopN,
		},
		Bench: BenchConfig{
			Size:   DefaultBenchSize,
			Cycles: DefaultBenchCycles,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Audit:  true,
		},
	}
}

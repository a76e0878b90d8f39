package config

// Config is the frozen v1 global schema.
type Config struct {
	Version   int             `toml:"version" json:"version"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	Profiling ProfilingConfig `toml:"profiling" json:"profiling"`
	Bench     BenchConfig     `toml:"bench" json:"bench"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
}

// StorageConfig locates the application-private files directory.
type StorageConfig struct {
	FilesDir string `toml:"files_dir" json:"filesDir"`
}

type ProfilingConfig struct {
	Phase    string `toml:"phase" json:"phase"`
	FileName string `toml:"file_name" json:"fileName"`
	TopN     int    `toml:"top_n" json:"topN"`
}

type BenchConfig struct {
	Size   int `toml:"size" json:"size"`
	Cycles int `toml:"cycles" json:"cycles"`
}

type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
	Audit  bool   `toml:"audit" json:"audit"`
}

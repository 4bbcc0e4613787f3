// Package config holds extraction settings and the string encoding used by
// content decoding.
package config

// Config holds all extraction settings.
type Config struct {
	// Debug enables diagnostic dumps of decoded content next to outputs.
	Debug     bool          `yaml:"debug"`
	Overwrite bool          `yaml:"overwrite"`
	Encoding  string        `yaml:"encoding"`
	Export    ExportConfig  `yaml:"export"`
	Logging   LoggingConfig `yaml:"logging"`
}

// ExportConfig selects which content kinds get converted.
type ExportConfig struct {
	Models   bool `yaml:"models"`
	Textures bool `yaml:"textures"`
	Sidecars bool `yaml:"sidecars"` // JSON for everything else
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Encoding: "ISO 8859-1",
		Export: ExportConfig{
			Models:   true,
			Textures: true,
			Sidecars: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

package logger

// Config is the logger configuration, embeddable in service config files.
type Config struct {
	// Level is the minimum level: debug, info, warn, error or fatal.
	Level string `env:"LOG_LEVEL" yaml:"level"`
	// Format is kept for config compatibility; output is always JSON.
	Format string `env:"LOG_FORMAT" yaml:"format"`
	// Development disables sampling so every entry is visible.
	Development bool `yaml:"development"`
	// OutputPaths are zap sink URLs or file paths.
	OutputPaths []string `yaml:"output_paths"`
}

const (
	DefaultLevel  = "info"
	DefaultFormat = "json"
)

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = DefaultLevel
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if len(c.OutputPaths) == 0 {
		c.OutputPaths = []string{"stdout"}
	}
}

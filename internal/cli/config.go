package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BROWSERFX_LOG_LEVEL.
const EnvPrefix = `BROWSERFX`

// Config is the resolved configuration shared by every command.
type Config struct {
	LogLevel      string        `mapstructure:"log_level"`
	URL           string        `mapstructure:"url"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Passive       bool          `mapstructure:"passive"`
	StrictURLs    bool          `mapstructure:"strict_urls"`
	Color         bool          `mapstructure:"color"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:      `warning`,
		URL:           `http://localhost/`,
		FrameInterval: time.Second / 60,
		Timeout:       10 * time.Second,
		Passive:       true,
		Color:         true,
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(`log_level`, d.LogLevel)
	v.SetDefault(`url`, d.URL)
	v.SetDefault(`frame_interval`, d.FrameInterval)
	v.SetDefault(`timeout`, d.Timeout)
	v.SetDefault(`passive`, d.Passive)
	v.SetDefault(`strict_urls`, d.StrictURLs)
	v.SetDefault(`color`, d.Color)
}

// Load reads the configuration from v, after defaults, the optional config
// file, and the environment.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf(`config: %w`, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no command can run with.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf(`config: frame_interval must be positive, got %s`, c.FrameInterval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf(`config: timeout must be positive, got %s`, c.Timeout)
	}
	return nil
}

// ParseLevel accepts the names logiface.Level.String returns, plus a few
// common aliases.
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case `disabled`, `off`, `none`:
		return logiface.LevelDisabled, nil
	case `emerg`, `emergency`:
		return logiface.LevelEmergency, nil
	case `alert`:
		return logiface.LevelAlert, nil
	case `crit`, `critical`:
		return logiface.LevelCritical, nil
	case `err`, `error`:
		return logiface.LevelError, nil
	case `warning`, `warn`:
		return logiface.LevelWarning, nil
	case `notice`:
		return logiface.LevelNotice, nil
	case `info`, `informational`:
		return logiface.LevelInformational, nil
	case `debug`:
		return logiface.LevelDebug, nil
	case `trace`:
		return logiface.LevelTrace, nil
	default:
		return 0, fmt.Errorf(`config: unknown log level %q`, s)
	}
}

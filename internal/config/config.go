// Package config loads hva-top's TOML configuration. Defaults are applied
// first, then only the keys present in the file override them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Channel       ChannelConfig
	Control       ControlConfig
	Activity      ActivityConfig
	Logs          LogsConfig
	Display       DisplayConfig
	Logging       LoggingConfig
	Notifications NotificationConfig
	Tracing       TracingConfig
}

type ChannelConfig struct {
	URL              string `toml:"url"`
	ReconnectDelayMS int    `toml:"reconnect_delay_ms"`
	DialTimeoutMS    int    `toml:"dial_timeout_ms"`
	ReadLimitBytes   int64  `toml:"read_limit_bytes"`
}

// ReconnectDelay returns the reconnect delay as a duration.
func (c ChannelConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMS) * time.Millisecond
}

// DialTimeout returns the dial timeout as a duration.
func (c ChannelConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

type ControlConfig struct {
	BaseURL      string `toml:"base_url"`
	TimeoutMS    int    `toml:"timeout_ms"`
	LogTailLines int    `toml:"log_tail_lines"`
	UsageDays    int    `toml:"usage_days"`
}

// Timeout returns the request timeout as a duration.
func (c ControlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

type ActivityConfig struct {
	MaxEntries int `toml:"max_entries"`
}

type LogsConfig struct {
	MaxEntries int `toml:"max_entries"`
}

type DisplayConfig struct {
	RefreshRateMS        int     `toml:"refresh_rate_ms"`
	CostColorGreenBelow  float64 `toml:"cost_color_green_below"`
	CostColorYellowBelow float64 `toml:"cost_color_yellow_below"`
}

// RefreshInterval returns the dashboard refresh interval.
func (d DisplayConfig) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshRateMS) * time.Millisecond
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type NotificationConfig struct {
	SystemNotify bool `toml:"system_notify"`
}

type TracingConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

// DefaultPath returns ~/.config/hva-top/config.toml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hva-top", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom loads path. A missing file yields the defaults.
func LoadFrom(path string) (*LoadResult, error) {
	if path == "" {
		return LoadFromString("")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadFromString("")
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromString(string(data))
}

var knownTopLevel = map[string]bool{
	"channel":       true,
	"control":       true,
	"activity":      true,
	"logs":          true,
	"display":       true,
	"logging":       true,
	"notifications": true,
	"tracing":       true,
}

func LoadFromString(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}
	if data == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var unknown []string
	for key := range raw {
		if !knownTopLevel[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}
	return result, nil
}

type tomlFile struct {
	Channel       *ChannelConfig      `toml:"channel"`
	Control       *ControlConfig      `toml:"control"`
	Activity      *ActivityConfig     `toml:"activity"`
	Logs          *LogsConfig         `toml:"logs"`
	Display       *DisplayConfig      `toml:"display"`
	Logging       *LoggingConfig      `toml:"logging"`
	Notifications *NotificationConfig `toml:"notifications"`
	Tracing       *TracingConfig      `toml:"tracing"`
}

func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Channel != nil {
		if section, ok := rawSection(raw, "channel"); ok {
			if has(section, "url") {
				cfg.Channel.URL = tf.Channel.URL
			}
			if has(section, "reconnect_delay_ms") {
				cfg.Channel.ReconnectDelayMS = tf.Channel.ReconnectDelayMS
			}
			if has(section, "dial_timeout_ms") {
				cfg.Channel.DialTimeoutMS = tf.Channel.DialTimeoutMS
			}
			if has(section, "read_limit_bytes") {
				cfg.Channel.ReadLimitBytes = tf.Channel.ReadLimitBytes
			}
		}
	}
	if tf.Control != nil {
		if section, ok := rawSection(raw, "control"); ok {
			if has(section, "base_url") {
				cfg.Control.BaseURL = tf.Control.BaseURL
			}
			if has(section, "timeout_ms") {
				cfg.Control.TimeoutMS = tf.Control.TimeoutMS
			}
			if has(section, "log_tail_lines") {
				cfg.Control.LogTailLines = tf.Control.LogTailLines
			}
			if has(section, "usage_days") {
				cfg.Control.UsageDays = tf.Control.UsageDays
			}
		}
	}
	if tf.Activity != nil {
		if section, ok := rawSection(raw, "activity"); ok && has(section, "max_entries") {
			cfg.Activity.MaxEntries = tf.Activity.MaxEntries
		}
	}
	if tf.Logs != nil {
		if section, ok := rawSection(raw, "logs"); ok && has(section, "max_entries") {
			cfg.Logs.MaxEntries = tf.Logs.MaxEntries
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if has(section, "refresh_rate_ms") {
				cfg.Display.RefreshRateMS = tf.Display.RefreshRateMS
			}
			if has(section, "cost_color_green_below") {
				cfg.Display.CostColorGreenBelow = tf.Display.CostColorGreenBelow
			}
			if has(section, "cost_color_yellow_below") {
				cfg.Display.CostColorYellowBelow = tf.Display.CostColorYellowBelow
			}
		}
	}
	if tf.Logging != nil {
		if section, ok := rawSection(raw, "logging"); ok {
			if has(section, "level") {
				cfg.Logging.Level = tf.Logging.Level
			}
			if has(section, "format") {
				cfg.Logging.Format = tf.Logging.Format
			}
			if has(section, "file") {
				cfg.Logging.File = expandHome(tf.Logging.File)
			}
		}
	}
	if tf.Notifications != nil {
		if section, ok := rawSection(raw, "notifications"); ok && has(section, "system_notify") {
			cfg.Notifications.SystemNotify = tf.Notifications.SystemNotify
		}
	}
	if tf.Tracing != nil {
		if section, ok := rawSection(raw, "tracing"); ok {
			if has(section, "enabled") {
				cfg.Tracing.Enabled = tf.Tracing.Enabled
			}
			if has(section, "endpoint") {
				cfg.Tracing.Endpoint = tf.Tracing.Endpoint
			}
			if has(section, "service_name") {
				cfg.Tracing.ServiceName = tf.Tracing.ServiceName
			}
		}
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func has(section map[string]any, key string) bool {
	_, ok := section[key]
	return ok
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Validate checks c, reporting every violation at once.
func (c Config) Validate() error {
	return validate(&c)
}

func validate(cfg *Config) error {
	var errs []string

	if err := checkURL(cfg.Channel.URL, "ws", "wss"); err != nil {
		errs = append(errs, fmt.Sprintf("channel url %v", err))
	}
	if cfg.Channel.ReconnectDelayMS < 1 {
		errs = append(errs, fmt.Sprintf("reconnect_delay_ms must be positive, got %d", cfg.Channel.ReconnectDelayMS))
	}
	if cfg.Channel.DialTimeoutMS < 1 {
		errs = append(errs, fmt.Sprintf("dial_timeout_ms must be positive, got %d", cfg.Channel.DialTimeoutMS))
	}
	if cfg.Channel.ReadLimitBytes < 1 {
		errs = append(errs, fmt.Sprintf("read_limit_bytes must be positive, got %d", cfg.Channel.ReadLimitBytes))
	}

	if err := checkURL(cfg.Control.BaseURL, "http", "https"); err != nil {
		errs = append(errs, fmt.Sprintf("control base_url %v", err))
	}
	if cfg.Control.TimeoutMS < 1 {
		errs = append(errs, fmt.Sprintf("timeout_ms must be positive, got %d", cfg.Control.TimeoutMS))
	}
	if cfg.Control.LogTailLines < 1 {
		errs = append(errs, fmt.Sprintf("log_tail_lines must be positive, got %d", cfg.Control.LogTailLines))
	}
	if cfg.Control.UsageDays < 1 {
		errs = append(errs, fmt.Sprintf("usage_days must be positive, got %d", cfg.Control.UsageDays))
	}

	if cfg.Activity.MaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("activity max_entries must be positive, got %d", cfg.Activity.MaxEntries))
	}
	if cfg.Logs.MaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("logs max_entries must be positive, got %d", cfg.Logs.MaxEntries))
	}

	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}
	if cfg.Display.CostColorGreenBelow <= 0 {
		errs = append(errs, fmt.Sprintf("cost_color_green_below must be positive, got %f", cfg.Display.CostColorGreenBelow))
	}
	if cfg.Display.CostColorYellowBelow <= 0 {
		errs = append(errs, fmt.Sprintf("cost_color_yellow_below must be positive, got %f", cfg.Display.CostColorYellowBelow))
	}
	if cfg.Display.CostColorYellowBelow < cfg.Display.CostColorGreenBelow {
		errs = append(errs, fmt.Sprintf("cost_color_yellow_below (%f) must not be below cost_color_green_below (%f)",
			cfg.Display.CostColorYellowBelow, cfg.Display.CostColorGreenBelow))
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging level must be one of debug, info, warn, error, got %q", cfg.Logging.Level))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging format must be json or console, got %q", cfg.Logging.Format))
	}

	if cfg.Tracing.Enabled && cfg.Tracing.ServiceName == "" {
		errs = append(errs, "tracing service_name must be set when tracing is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is invalid: %w", err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("must be a %s URL with a host, got %q", strings.Join(schemes, "/"), raw)
}

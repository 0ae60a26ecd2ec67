package config

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Channel: ChannelConfig{
			URL:              "ws://127.0.0.1:8765/ws",
			ReconnectDelayMS: 3000,
			DialTimeoutMS:    5000,
			ReadLimitBytes:   1 << 20,
		},
		Control: ControlConfig{
			BaseURL:      "http://127.0.0.1:8765",
			TimeoutMS:    10000,
			LogTailLines: 100,
			UsageDays:    30,
		},
		Activity: ActivityConfig{MaxEntries: 50},
		Logs:     LogsConfig{MaxEntries: 500},
		Display: DisplayConfig{
			RefreshRateMS:        500,
			CostColorGreenBelow:  0.50,
			CostColorYellowBelow: 2.00,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			ServiceName: "hva-top",
		},
	}
}

// DefaultFileContents is the commented config written by "hva-top setup".
const DefaultFileContents = `# hva-top configuration

[channel]
# Event stream published by the assistant backend.
url = "ws://127.0.0.1:8765/ws"
# Fixed pause before reconnecting after the stream drops.
reconnect_delay_ms = 3000
dial_timeout_ms = 5000
read_limit_bytes = 1048576

[control]
base_url = "http://127.0.0.1:8765"
timeout_ms = 10000
log_tail_lines = 100
usage_days = 30

[activity]
max_entries = 50

[logs]
max_entries = 500

[display]
refresh_rate_ms = 500
# Hourly burn rate thresholds in USD.
cost_color_green_below = 0.50
cost_color_yellow_below = 2.00

[logging]
level = "info"
format = "json"
# file = "~/.local/state/hva-top/hva-top.log"

[notifications]
system_notify = false

[tracing]
enabled = false
# endpoint = "127.0.0.1:4318"
service_name = "hva-top"
`

package refresh

import "time"

// Config defines the refresher cadence and event window.
type Config struct {
	// Interval is how often the provider is polled.
	Interval time.Duration `yaml:"interval"`
	// PastDays is how far back the event window reaches.
	PastDays int `yaml:"past_days"`
	// WindowDays is how far ahead the event window reaches.
	WindowDays int `yaml:"window_days"`
}

// DefaultConfig returns the default refresher configuration. The 30s
// interval matches the dashboard's recompute cadence for time-sensitive
// states like "meeting soon".
func DefaultConfig() *Config {
	return &Config{
		Interval:   30 * time.Second,
		PastDays:   1,
		WindowDays: 14,
	}
}

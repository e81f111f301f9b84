package config

import "time"

const (
	defaultWaitMax      = 300 * time.Second
	defaultWaitInterval = 2 * time.Second
)

// WaitConfig bounds the poll loop.
type WaitConfig struct {
	// Max is the total wait budget measured from the first poll.
	Max time.Duration `env:"MAX" envDefault:"300s"`
	// Interval is the sleep between unsuccessful polls.
	Interval time.Duration `env:"INTERVAL" envDefault:"2s"`
}

// Sanitize replaces non-positive durations with defaults.
func (c *WaitConfig) Sanitize() {
	if c.Max <= 0 {
		c.Max = defaultWaitMax
	}
	if c.Interval <= 0 {
		c.Interval = defaultWaitInterval
	}
}

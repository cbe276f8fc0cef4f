// Package retry retries calls to MCP servers that fail for transient
// reasons. Calls are repeated with exponential backoff; errors that are not
// transient are returned immediately.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config controls how often and how long a call is retried.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration

	// Multiplier grows the delay after every attempt.
	Multiplier float64

	// Jitter spreads delays by up to this fraction in either direction.
	Jitter float64
}

// DefaultConfig returns the configuration used for remote tool registries:
// 3 attempts starting at 200ms, doubling up to 5s, with 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a configuration that makes a single attempt.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

func (c Config) attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

// Delay returns the wait after the given attempt (0-indexed):
// min(MaxDelay, InitialDelay * Multiplier^attempt), then jittered.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := c.Multiplier
	if mult <= 0 {
		mult = 1
	}

	delay := float64(c.InitialDelay) * math.Pow(mult, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter > 0 {
		delay *= 1.0 + (rand.Float64()*2-1)*c.Jitter
	}
	return time.Duration(delay)
}

// Package timer derives countdowns from a stored start time. Nothing here
// schedules anything: callers pass the server's now and poll.
package timer

import (
	"math"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/models"
)

// Start arms the countdown at now
func Start(c *models.Countdown, now time.Time, seconds int) {
	started := now
	c.StartedAt = &started
	c.InitialSeconds = seconds
}

// Stop clears the countdown
func Stop(c *models.Countdown) {
	c.StartedAt = nil
	c.InitialSeconds = 0
}

// Remaining returns the whole seconds left, rounded up and never negative.
// A countdown that has not started reports its full length.
func Remaining(c models.Countdown, now time.Time) int {
	if c.StartedAt == nil {
		return c.InitialSeconds
	}

	left := time.Duration(c.InitialSeconds)*time.Second - now.Sub(*c.StartedAt)
	if left <= 0 {
		return 0
	}

	return int(math.Ceil(left.Seconds()))
}

// Expired reports whether a started countdown has run out
func Expired(c models.Countdown, now time.Time) bool {
	if c.StartedAt == nil {
		return false
	}
	return now.Sub(*c.StartedAt) >= time.Duration(c.InitialSeconds)*time.Second
}

package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/datkingvn/pvoil-sub000/internal/common/clock Clock

// Clock is the server-side time source. Buzzer order and answer ranking
// are always taken from it, never from a client-supplied timestamp.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// Now returns the current time in UTC
func (c *DefaultClock) Now() time.Time {
	return time.Now().UTC()
}

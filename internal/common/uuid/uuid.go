package uuid

import "github.com/google/uuid"

// UUID hands out identifiers for bank items, questions and buzzer presses
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements the UUID interface using the uuid package
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new random (v4) UUID
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}

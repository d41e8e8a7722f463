package events

import (
	"encoding/json"
	"time"
)

// Event is what subscribers receive after every committed command
type Event struct {
	ShowID string          `json:"showId"`
	Round  string          `json:"round"`
	Action string          `json:"action"`
	State  json.RawMessage `json:"state"`
	At     time.Time       `json:"at"`
}

type PublishInput struct {
	ShowID string
	Round  string
	Action string

	// State is marshalled as the event payload
	State any
}

type SubscribeInput struct {
	ShowID string
}

// Subscription streams events until Close is called
type Subscription struct {
	Events <-chan *Event
	Close  func() error
}

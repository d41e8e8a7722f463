package models

import "time"

// BuzzerPress is one accepted buzzer press
type BuzzerPress struct {
	ID       string `json:"id"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`

	// ReceivedAt is the server clock at the moment the press was accepted
	ReceivedAt time.Time `json:"receivedAt"`

	// ClientTimestampMillis is what the client claimed, kept for display only
	ClientTimestampMillis int64 `json:"clientTimestampMillis,omitempty"`

	// Sequence is the server arrival order, starting at 1 per window
	Sequence int `json:"sequence"`
}

// BuzzerWindow is the append-only press queue of the current buzzer window
type BuzzerWindow struct {
	Open     bool       `json:"open"`
	OpenedAt *time.Time `json:"openedAt,omitempty"`

	// DurationSeconds of 0 keeps the window open until it is closed
	DurationSeconds int `json:"durationSeconds"`

	// Presses holds the queue; the head is the current winner
	Presses []BuzzerPress `json:"presses"`

	// Disqualified teams were popped from the head and may not press again
	Disqualified []string `json:"disqualified,omitempty"`

	// Excluded teams may not press in this window at all
	Excluded []string `json:"excluded,omitempty"`

	NextSequence int `json:"nextSequence"`
}

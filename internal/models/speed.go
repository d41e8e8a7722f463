package models

import "time"

// SpeedStatus represents the state of the speed round
type SpeedStatus string

const (
	SpeedStatusIdle           SpeedStatus = "idle"
	SpeedStatusQuestionOpen   SpeedStatus = "question_open"
	SpeedStatusQuestionClosed SpeedStatus = "question_closed"
	SpeedStatusRoundFinished  SpeedStatus = "round_finished"
)

// SpeedRound is the persisted state of the speed round
type SpeedRound struct {
	Configured bool        `json:"configured"`
	Status     SpeedStatus `json:"status"`

	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"currentIndex"`

	Timer   Countdown    `json:"timer"`
	Answers []TeamAnswer `json:"answers"`

	// Scored is set once points for the current question were applied
	Scored bool `json:"scored"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentQuestion returns the active question or nil past the end
func (r *SpeedRound) CurrentQuestion() *Question {
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Questions) {
		return nil
	}
	return &r.Questions[r.CurrentIndex]
}

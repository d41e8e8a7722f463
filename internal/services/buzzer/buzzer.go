// Package buzzer arbitrates buzzer races. Presses are queued strictly in the
// order the server accepted them; client timestamps are carried for display
// and never used for ordering.
package buzzer

import (
	"fmt"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/services/timer"
)

// PressInput is a press request as it arrived at the server
type PressInput struct {
	PressID               string
	TeamID                string
	TeamName              string
	ClientTimestampMillis int64
}

// Open starts a fresh window, dropping any previous presses.
// A durationSeconds of 0 keeps the window open until Close.
func Open(w *models.BuzzerWindow, now time.Time, durationSeconds int, excluded ...string) {
	opened := now
	*w = models.BuzzerWindow{
		Open:            true,
		OpenedAt:        &opened,
		DurationSeconds: durationSeconds,
		Presses:         []models.BuzzerPress{},
		Excluded:        append([]string(nil), excluded...),
	}
}

// Close stops accepting presses; the queue is kept for judging
func Close(w *models.BuzzerWindow) {
	w.Open = false
}

// Clear closes the window and drops the queue
func Clear(w *models.BuzzerWindow) {
	*w = models.BuzzerWindow{Presses: []models.BuzzerPress{}}
}

// Accepting reports whether a press at now would be inside the window
func Accepting(w *models.BuzzerWindow, now time.Time) bool {
	if !w.Open {
		return false
	}
	if w.DurationSeconds <= 0 || w.OpenedAt == nil {
		return true
	}
	return !timer.Expired(countdown(w), now)
}

// Remaining returns the seconds left in a timed window
func Remaining(w *models.BuzzerWindow, now time.Time) int {
	if !w.Open || w.DurationSeconds <= 0 {
		return 0
	}
	return timer.Remaining(countdown(w), now)
}

// Press appends the team to the queue in arrival order
func Press(w *models.BuzzerWindow, now time.Time, in PressInput) (*models.BuzzerPress, error) {
	if in.TeamID == "" {
		return nil, fmt.Errorf("%w: team id is required", gameerr.ErrInvalidInput)
	}

	if !Accepting(w, now) {
		return nil, gameerr.ErrWindowClosed
	}

	if contains(w.Excluded, in.TeamID) {
		return nil, fmt.Errorf("%w: team %s may not buzz in this window", gameerr.ErrTeamLocked, in.TeamID)
	}

	if contains(w.Disqualified, in.TeamID) || pressed(w, in.TeamID) {
		return nil, fmt.Errorf("%w: team %s", gameerr.ErrAlreadyPressed, in.TeamID)
	}

	w.NextSequence++
	p := models.BuzzerPress{
		ID:                    in.PressID,
		TeamID:                in.TeamID,
		TeamName:              in.TeamName,
		ReceivedAt:            now,
		ClientTimestampMillis: in.ClientTimestampMillis,
		Sequence:              w.NextSequence,
	}
	w.Presses = append(w.Presses, p)

	return &w.Presses[len(w.Presses)-1], nil
}

// Winner returns the head of the queue or nil
func Winner(w *models.BuzzerWindow) *models.BuzzerPress {
	if len(w.Presses) == 0 {
		return nil
	}
	return &w.Presses[0]
}

// DisqualifyWinner pops the head so the next press becomes the winner.
// The popped team cannot press again in this window.
func DisqualifyWinner(w *models.BuzzerWindow) (*models.BuzzerPress, error) {
	if len(w.Presses) == 0 {
		return nil, fmt.Errorf("%w: buzzer queue is empty", gameerr.ErrNothingToJudge)
	}

	head := w.Presses[0]
	w.Presses = append([]models.BuzzerPress{}, w.Presses[1:]...)
	w.Disqualified = append(w.Disqualified, head.TeamID)

	return &head, nil
}

func countdown(w *models.BuzzerWindow) models.Countdown {
	return models.Countdown{StartedAt: w.OpenedAt, InitialSeconds: w.DurationSeconds}
}

func pressed(w *models.BuzzerWindow, teamID string) bool {
	for _, p := range w.Presses {
		if p.TeamID == teamID {
			return true
		}
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

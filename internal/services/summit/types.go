package summit

import (
	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/random"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"go.uber.org/zap"
)

const (
	// DefaultBuzzerSeconds is the steal window after a failed primary answer
	DefaultBuzzerSeconds = 5

	// DefaultTeamsToFinish is how many packages are played before the round ends
	DefaultTeamsToFinish = 4
)

// Config holds configuration for the summit engine
type Config struct {
	BuzzerSeconds int
	TeamsToFinish int

	Store         document.Repository
	Publisher     events.Publisher
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Picker        random.Picker
	Logger        *zap.Logger
}

type ExecuteInput struct {
	ShowID  string
	Command Command
}

type GetStateInput struct {
	ShowID string
}

// StateOutput is the full round state after a command or read
type StateOutput struct {
	Round *models.SummitRound  `json:"round"`
	Teams *models.TeamRegistry `json:"teams"`

	// RemainingSeconds is the primary countdown, or the steal window while it is open
	RemainingSeconds int `json:"remainingSeconds"`

	// Available counts unused bank items per point value
	Available map[int]int `json:"available"`

	Deltas []models.ScoreDelta `json:"deltas,omitempty"`
}

// questionSeconds is the primary countdown for a question without its own limit
func questionSeconds(points int) int {
	switch points {
	case 10:
		return 10
	case 30:
		return 20
	default:
		return 15
	}
}

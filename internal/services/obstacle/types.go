package obstacle

import (
	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"go.uber.org/zap"
)

// DefaultAnswerSeconds is the tile question countdown
const DefaultAnswerSeconds = 15

// Config holds configuration for the obstacle engine
type Config struct {
	// AnswerSeconds is used for tile questions without their own time limit
	AnswerSeconds int

	Store         document.Repository
	Publisher     events.Publisher
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
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
	Round *models.ObstacleRound `json:"round"`
	Teams *models.TeamRegistry  `json:"teams"`

	// RemainingSeconds is derived from the stored countdown and the server clock
	RemainingSeconds int `json:"remainingSeconds"`

	// Deltas are the score changes this command applied
	Deltas []models.ScoreDelta `json:"deltas,omitempty"`
}

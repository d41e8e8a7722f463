package speed

import (
	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"go.uber.org/zap"
)

// DefaultQuestionSeconds is used for questions without their own time limit
const DefaultQuestionSeconds = 30

// Config holds configuration for the speed engine
type Config struct {
	QuestionSeconds int

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
	Round            *models.SpeedRound   `json:"round"`
	Teams            *models.TeamRegistry `json:"teams"`
	RemainingSeconds int                  `json:"remainingSeconds"`
	Deltas           []models.ScoreDelta  `json:"deltas,omitempty"`
}

package registry

import (
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"go.uber.org/zap"
)

// Config holds configuration for the registry service
type Config struct {
	Store         document.Repository
	Publisher     events.Publisher
	UUIDGenerator uuid.UUID
	Logger        *zap.Logger
}

// RosterEntry is one team as provided by the roster source
type RosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SetRosterInput struct {
	ShowID string
	Teams  []RosterEntry

	// ResetScores zeroes every score instead of carrying it over
	ResetScores bool
}

type SetRosterOutput struct {
	Registry *models.TeamRegistry
}

type GetTeamsInput struct {
	ShowID string
}

type GetTeamsOutput struct {
	Registry *models.TeamRegistry
}

type AdjustScoreInput struct {
	ShowID string
	TeamID string
	Delta  int
	Reason string
}

type AdjustScoreOutput struct {
	Team *models.Team
}

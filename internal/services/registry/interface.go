package registry

import "context"

// Service defines the team registry operations
type Service interface {
	// SetRoster replaces the roster, keeping scores of teams already present
	SetRoster(ctx context.Context, input *SetRosterInput) (*SetRosterOutput, error)

	// GetTeams returns the registry in roster order
	GetTeams(ctx context.Context, input *GetTeamsInput) (*GetTeamsOutput, error)

	// AdjustScore applies a manual correction from the MC
	AdjustScore(ctx context.Context, input *AdjustScoreInput) (*AdjustScoreOutput, error)
}

package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"github.com/datkingvn/pvoil-sub000/internal/services/scoring"
	"go.uber.org/zap"
)

const eventRound = "teams"

type service struct {
	store     document.Repository
	publisher events.Publisher
	uuid      uuid.UUID
	logger    *zap.Logger
}

// New creates a new registry service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}

	if cfg.Publisher == nil {
		return nil, errors.New("publisher cannot be nil")
	}

	if cfg.UUIDGenerator == nil {
		return nil, errors.New("UUID generator cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		uuid:      cfg.UUIDGenerator,
		logger:    logger.Named("registry"),
	}, nil
}

// SetRoster replaces the roster
func (s *service) SetRoster(ctx context.Context, input *SetRosterInput) (*SetRosterOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	if len(input.Teams) == 0 {
		return nil, fmt.Errorf("%w: roster cannot be empty", gameerr.ErrInvalidInput)
	}

	entries := make([]RosterEntry, 0, len(input.Teams))
	seen := make(map[string]bool, len(input.Teams))
	for _, e := range input.Teams {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("%w: team name is required", gameerr.ErrInvalidInput)
		}
		if e.ID == "" {
			e.ID = s.uuid.NewUUID()
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("%w: duplicate team id %s", gameerr.ErrInvalidInput, e.ID)
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}

	var out *models.TeamRegistry
	err := s.store.Transact(ctx, &document.TransactInput{
		Keys: []string{TeamsKey(input.ShowID)},
		Fn: func(tx document.Tx) error {
			current, err := Load(tx, input.ShowID)
			if err != nil {
				return err
			}

			next := &models.TeamRegistry{Teams: make([]*models.Team, 0, len(entries))}
			for _, e := range entries {
				team := &models.Team{ID: e.ID, Name: e.Name}
				if prev := current.Find(e.ID); prev != nil {
					*team = *prev
					team.Name = e.Name
					if input.ResetScores {
						team.Score = 0
					}
				}
				next.Teams = append(next.Teams, team)
			}

			out = next
			return Save(tx, input.ShowID, next)
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("roster set", zap.String("show_id", input.ShowID), zap.Int("teams", len(out.Teams)))
	s.publish(ctx, input.ShowID, "setRoster", out)

	return &SetRosterOutput{Registry: out}, nil
}

// GetTeams returns the registry without taking part in any transaction
func (s *service) GetTeams(ctx context.Context, input *GetTeamsInput) (*GetTeamsOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	reg := &models.TeamRegistry{Teams: []*models.Team{}}
	if _, err := s.store.Get(ctx, &document.GetInput{Key: TeamsKey(input.ShowID), Dest: reg}); err != nil {
		return nil, err
	}
	if reg.Teams == nil {
		reg.Teams = []*models.Team{}
	}

	return &GetTeamsOutput{Registry: reg}, nil
}

// AdjustScore applies a manual correction
func (s *service) AdjustScore(ctx context.Context, input *AdjustScoreInput) (*AdjustScoreOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	if input.Delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", gameerr.ErrInvalidInput)
	}

	reason := input.Reason
	if reason == "" {
		reason = scoring.ReasonManual
	}

	var team models.Team
	var reg *models.TeamRegistry
	err := s.store.Transact(ctx, &document.TransactInput{
		Keys: []string{TeamsKey(input.ShowID)},
		Fn: func(tx document.Tx) error {
			var err error
			reg, err = Load(tx, input.ShowID)
			if err != nil {
				return err
			}

			err = ApplyDeltas(reg, []models.ScoreDelta{{TeamID: input.TeamID, Points: input.Delta, Reason: reason}})
			if err != nil {
				return err
			}

			team = *reg.Find(input.TeamID)
			return Save(tx, input.ShowID, reg)
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("score adjusted",
		zap.String("show_id", input.ShowID),
		zap.String("team_id", input.TeamID),
		zap.Int("delta", input.Delta),
		zap.String("reason", reason),
	)
	s.publish(ctx, input.ShowID, "adjustScore", reg)

	return &AdjustScoreOutput{Team: &team}, nil
}

func (s *service) publish(ctx context.Context, showID, action string, reg *models.TeamRegistry) {
	err := s.publisher.Publish(ctx, &events.PublishInput{
		ShowID: showID,
		Round:  eventRound,
		Action: action,
		State:  reg,
	})
	if err != nil {
		s.logger.Warn("failed to publish event", zap.String("show_id", showID), zap.Error(err))
	}
}

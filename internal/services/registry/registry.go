package registry

import (
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
)

// TeamsKey is the document key of a show's team registry
func TeamsKey(showID string) string {
	return document.ShowKey(showID, "teams")
}

// Load reads the registry inside a transaction; a missing document is an empty roster
func Load(tx document.Tx, showID string) (*models.TeamRegistry, error) {
	reg := &models.TeamRegistry{Teams: []*models.Team{}}
	if _, err := tx.Load(TeamsKey(showID), reg); err != nil {
		return nil, err
	}
	if reg.Teams == nil {
		reg.Teams = []*models.Team{}
	}
	return reg, nil
}

// Save queues the registry write
func Save(tx document.Tx, showID string, reg *models.TeamRegistry) error {
	return tx.Store(TeamsKey(showID), reg)
}

// ApplyDeltas adds every delta to its team. All teams are checked before
// any score changes, so a bad delta leaves the registry untouched.
func ApplyDeltas(reg *models.TeamRegistry, deltas []models.ScoreDelta) error {
	for _, d := range deltas {
		if reg.Find(d.TeamID) == nil {
			return fmt.Errorf("%w: %s", gameerr.ErrTeamNotFound, d.TeamID)
		}
	}

	for _, d := range deltas {
		reg.Find(d.TeamID).Score += d.Points
	}

	return nil
}

// ClearSummit drops every package assignment and hope star
func ClearSummit(reg *models.TeamRegistry) {
	for _, t := range reg.Teams {
		t.HasWagered = false
		t.AssignedPackage = nil
		t.PackageOrder = nil
	}
}

// RequireTeam returns the team or a NotFound error
func RequireTeam(reg *models.TeamRegistry, teamID string) (*models.Team, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", gameerr.ErrInvalidInput)
	}
	t := reg.Find(teamID)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", gameerr.ErrTeamNotFound, teamID)
	}
	return t, nil
}

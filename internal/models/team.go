package models

// PackageType is the total point value of a summit package
type PackageType int

const (
	// Package40 is two 10-point questions and one 20-point question
	Package40 PackageType = 40

	// Package60 is one question each of 10, 20 and 30 points
	Package60 PackageType = 60

	// Package80 is one 20-point question and two 30-point questions
	Package80 PackageType = 80
)

// Valid reports whether p is one of the three package types
func (p PackageType) Valid() bool {
	return p == Package40 || p == Package60 || p == Package80
}

// Team represents one competing team. Score persists across rounds.
// Keyword lockouts live on the obstacle round, not here.
type Team struct {
	// ID is the unique identifier for the team
	ID string `json:"id"`

	// Name is the display name of the team
	Name string `json:"name"`

	// Score is the running total, which may go negative
	Score int `json:"score"`

	// HasWagered is set once the team has used its hope star
	HasWagered bool `json:"hasWagered"`

	// AssignedPackage is the summit package the team has taken, if any
	AssignedPackage *PackageType `json:"assignedPackage,omitempty"`

	// PackageOrder is the 1-based turn in which the team took its package
	PackageOrder *int `json:"packageOrder,omitempty"`
}

// TeamRegistry is the persisted roster of teams in roster order
type TeamRegistry struct {
	Teams []*Team `json:"teams"`
}

// Find returns the team with the given ID or nil
func (r *TeamRegistry) Find(teamID string) *Team {
	if r == nil {
		return nil
	}
	for _, t := range r.Teams {
		if t.ID == teamID {
			return t
		}
	}
	return nil
}

// ScoreDelta is a point change for one team produced by the scoring rules
type ScoreDelta struct {
	TeamID string `json:"teamId"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

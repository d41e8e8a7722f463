package models

import "time"

// AnswerRole distinguishes who submitted an answer
type AnswerRole string

const (
	// AnswerRoleOpen is any team answering an open question
	AnswerRoleOpen AnswerRole = "open"

	// AnswerRolePrimary is the summit team playing its own package
	AnswerRolePrimary AnswerRole = "primary"

	// AnswerRoleChallenger is a summit team stealing after the primary failed
	AnswerRoleChallenger AnswerRole = "challenger"
)

// TeamAnswer is one team's answer to the active question
type TeamAnswer struct {
	TeamID     string `json:"teamId"`
	TeamName   string `json:"teamName"`
	AnswerText string `json:"answerText"`

	// IsCorrect is nil until the answer is graded
	IsCorrect *bool `json:"isCorrect"`

	// SubmittedAt is the server receive time used for ranking
	SubmittedAt time.Time `json:"submittedAt"`

	// ClientTimestampMillis is display-only
	ClientTimestampMillis int64 `json:"clientTimestampMillis,omitempty"`

	PointsAwarded int        `json:"pointsAwarded"`
	Role          AnswerRole `json:"role"`
}

// Graded reports whether the answer has a judgment
func (a *TeamAnswer) Graded() bool {
	return a.IsCorrect != nil
}

// Correct reports whether the answer was graded correct
func (a *TeamAnswer) Correct() bool {
	return a.IsCorrect != nil && *a.IsCorrect
}

// FindAnswer returns the index of the team's answer or -1
func FindAnswer(answers []TeamAnswer, teamID string) int {
	for i := range answers {
		if answers[i].TeamID == teamID {
			return i
		}
	}
	return -1
}

// Countdown is the stored half of a timer; the remaining time is derived
type Countdown struct {
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	InitialSeconds int        `json:"initialSeconds"`
}

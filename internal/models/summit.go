package models

import "time"

// SummitStatus represents the state of the summit round
type SummitStatus string

const (
	SummitStatusTeamSelection     SummitStatus = "team_selection"
	SummitStatusPackageSelection  SummitStatus = "package_selection_by_mc"
	SummitStatusQuestionPreparing SummitStatus = "question_preparing"
	SummitStatusQuestionOpen      SummitStatus = "question_open"
	SummitStatusWaitingJudgment   SummitStatus = "waiting_mc_judgment"
	SummitStatusBuzzerWindow      SummitStatus = "buzzer_window"
	SummitStatusAnswerRevealed    SummitStatus = "answer_revealed"
	SummitStatusRoundFinished     SummitStatus = "round_finished"
)

// SummitRound is the persisted state of the summit round
type SummitRound struct {
	Configured bool         `json:"configured"`
	Status     SummitStatus `json:"status"`

	PrimaryTeamID string   `json:"primaryTeamId,omitempty"`
	Package       *Package `json:"package,omitempty"`
	QuestionIndex int      `json:"questionIndex"`

	Timer   Countdown    `json:"timer"`
	Answers []TeamAnswer `json:"answers"`

	// WagerTeamIDs holds the hope stars committed for the current question
	WagerTeamIDs []string `json:"wagerTeamIds,omitempty"`

	Buzzer BuzzerWindow `json:"buzzer"`

	PrimaryJudged bool `json:"primaryJudged"`

	// PrimaryStealPenalty is set once the primary lost points to a challenger
	PrimaryStealPenalty bool `json:"primaryStealPenalty"`

	// Resolved is set once someone answered the current question correctly
	Resolved bool `json:"resolved"`

	CompletedTeamIDs []string `json:"completedTeamIds"`
	TeamsToFinish    int      `json:"teamsToFinish"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentQuestion returns the active package question or nil
func (r *SummitRound) CurrentQuestion() *Question {
	if r.Package == nil || r.QuestionIndex < 0 || r.QuestionIndex >= len(r.Package.Questions) {
		return nil
	}
	return &r.Package.Questions[r.QuestionIndex]
}

// Wagered reports whether teamID holds a hope star on the current question
func (r *SummitRound) Wagered(teamID string) bool {
	for _, id := range r.WagerTeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

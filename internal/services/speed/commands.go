package speed

import "github.com/datkingvn/pvoil-sub000/internal/models"

// Command is one MC or team action. Only the types below implement it.
type Command interface {
	Name() string
	speedCommand()
}

// SetConfig loads the ordered question list and resets the round
type SetConfig struct {
	Questions []models.Question `json:"questions"`
}

// OpenQuestion starts the countdown for the current question
type OpenQuestion struct{}

// SubmitAnswer records and auto-grades one team's answer
type SubmitAnswer struct {
	TeamID                string `json:"teamId"`
	TeamName              string `json:"teamName"`
	Answer                string `json:"answer"`
	ClientTimestampMillis int64  `json:"clientTimestampMillis"`
}

// CloseQuestion stops accepting answers
type CloseQuestion struct{}

// MarkAnswer overrides the automatic grade of one answer
type MarkAnswer struct {
	TeamID  string `json:"teamId"`
	Correct *bool  `json:"correct"`
}

// CalculatePoints ranks the correct answers and applies the ladder once
type CalculatePoints struct{}

// NextQuestion advances past the closed question
type NextQuestion struct{}

// SetStatus abandons the open question and returns to idle
type SetStatus struct {
	Status models.SpeedStatus `json:"status"`
}

// Reset rewinds to the first question
type Reset struct{}

func (*SetConfig) Name() string       { return "setConfig" }
func (*OpenQuestion) Name() string    { return "openQuestion" }
func (*SubmitAnswer) Name() string    { return "submitAnswer" }
func (*CloseQuestion) Name() string   { return "closeQuestion" }
func (*MarkAnswer) Name() string      { return "markAnswer" }
func (*CalculatePoints) Name() string { return "calculatePoints" }
func (*NextQuestion) Name() string    { return "nextQuestion" }
func (*SetStatus) Name() string       { return "setGameState" }
func (*Reset) Name() string           { return "reset" }

func (*SetConfig) speedCommand()       {}
func (*OpenQuestion) speedCommand()    {}
func (*SubmitAnswer) speedCommand()    {}
func (*CloseQuestion) speedCommand()   {}
func (*MarkAnswer) speedCommand()      {}
func (*CalculatePoints) speedCommand() {}
func (*NextQuestion) speedCommand()    {}
func (*SetStatus) speedCommand()       {}
func (*Reset) speedCommand()           {}

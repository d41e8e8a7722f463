package summit

import "github.com/datkingvn/pvoil-sub000/internal/models"

// Command is one MC or team action. Only the types below implement it.
type Command interface {
	Name() string
	summitCommand()
}

// SetConfig replaces the question bank and restarts the round
type SetConfig struct {
	Questions []models.Question `json:"questions"`
}

// SelectTeam picks the primary team for the next package
type SelectTeam struct {
	TeamID string `json:"teamId"`
}

// SelectPackage draws a package of the given type for the primary team
type SelectPackage struct {
	PackageType models.PackageType `json:"packageType"`
}

// PlaceWager commits a team's hope star on the upcoming question
type PlaceWager struct {
	TeamID string `json:"teamId"`
}

// OpenQuestion starts the primary team's countdown
type OpenQuestion struct{}

// SubmitAnswer is the primary team's answer or the buzzer winner's steal
type SubmitAnswer struct {
	TeamID                string `json:"teamId"`
	TeamName              string `json:"teamName"`
	Answer                string `json:"answer"`
	ClientTimestampMillis int64  `json:"clientTimestampMillis"`
}

// EndAnswering stops the primary team's countdown for judgment
type EndAnswering struct{}

// MarkAnswer judges the pending primary or challenger answer
type MarkAnswer struct {
	// TeamID is optional; when set it must own the pending answer
	TeamID  string `json:"teamId"`
	Correct *bool  `json:"correct"`
}

// PressBuzzer queues a team for a steal
type PressBuzzer struct {
	TeamID                string `json:"teamId"`
	TeamName              string `json:"teamName"`
	ClientTimestampMillis int64  `json:"clientTimestampMillis"`
}

// RevealAnswer ends the steal phase and shows the answer
type RevealAnswer struct{}

// NextQuestion moves to the next package question or back to team selection
type NextQuestion struct{}

// SetStatus steps the round back before anything was scored
type SetStatus struct {
	Status models.SummitStatus `json:"status"`
}

// Reset restarts the round and keeps the bank as consumed
type Reset struct{}

// ResetAll restarts the round and returns every bank item to the pool
type ResetAll struct{}

func (*SetConfig) Name() string     { return "setConfig" }
func (*SelectTeam) Name() string    { return "selectTeam" }
func (*SelectPackage) Name() string { return "selectPackage" }
func (*PlaceWager) Name() string    { return "placeWager" }
func (*OpenQuestion) Name() string  { return "openQuestion" }
func (*SubmitAnswer) Name() string  { return "submitAnswer" }
func (*EndAnswering) Name() string  { return "endAnswering" }
func (*MarkAnswer) Name() string    { return "markAnswer" }
func (*PressBuzzer) Name() string   { return "pressBuzzer" }
func (*RevealAnswer) Name() string  { return "revealAnswer" }
func (*NextQuestion) Name() string  { return "nextQuestion" }
func (*SetStatus) Name() string     { return "setGameState" }
func (*Reset) Name() string         { return "reset" }
func (*ResetAll) Name() string      { return "resetAll" }

func (*SetConfig) summitCommand()     {}
func (*SelectTeam) summitCommand()    {}
func (*SelectPackage) summitCommand() {}
func (*PlaceWager) summitCommand()    {}
func (*OpenQuestion) summitCommand()  {}
func (*SubmitAnswer) summitCommand()  {}
func (*EndAnswering) summitCommand()  {}
func (*MarkAnswer) summitCommand()    {}
func (*PressBuzzer) summitCommand()   {}
func (*RevealAnswer) summitCommand()  {}
func (*NextQuestion) summitCommand()  {}
func (*SetStatus) summitCommand()     {}
func (*Reset) summitCommand()         {}
func (*ResetAll) summitCommand()      {}

package obstacle

import "github.com/datkingvn/pvoil-sub000/internal/models"

// Command is one MC or team action. Only the types below implement it.
type Command interface {
	Name() string
	obstacleCommand()
}

// SetConfig loads the keyword and the four tile questions and resets the round
type SetConfig struct {
	Keyword   string            `json:"keyword"`
	Questions []models.Question `json:"questions"`
}

// SelectTile arms the question behind a hidden tile
type SelectTile struct {
	TeamID    string `json:"teamId"`
	TileIndex int    `json:"tileIndex"`
}

// OpenQuestion starts the answer countdown for the armed tile
type OpenQuestion struct{}

// SubmitAnswer records one team's answer to the open tile question
type SubmitAnswer struct {
	TeamID                string `json:"teamId"`
	TeamName              string `json:"teamName"`
	Answer                string `json:"answer"`
	ClientTimestampMillis int64  `json:"clientTimestampMillis"`
}

// CloseAnswers stops accepting answers before the countdown ends
type CloseAnswers struct{}

// MarkAnswer grades one pending tile answer
type MarkAnswer struct {
	TeamID  string `json:"teamId"`
	Correct *bool  `json:"correct"`
}

// CloseTile resolves the armed tile when nobody answered it correctly
type CloseTile struct{}

// PressBuzzer queues a team to guess the keyword
type PressBuzzer struct {
	TeamID                string `json:"teamId"`
	TeamName              string `json:"teamName"`
	ClientTimestampMillis int64  `json:"clientTimestampMillis"`
}

// JudgeKeyword judges the team at the head of the buzzer queue
type JudgeKeyword struct {
	// TeamID is optional; when set it must be the queue head
	TeamID  string `json:"teamId"`
	Correct *bool  `json:"correct"`
}

// SetStatus forces the round back to idle, abandoning the armed tile
type SetStatus struct {
	Status models.ObstacleStatus `json:"status"`
}

// Reset hides every tile and clears answers, buzzer and locks
type Reset struct{}

func (*SetConfig) Name() string    { return "setConfig" }
func (*SelectTile) Name() string   { return "selectTile" }
func (*OpenQuestion) Name() string { return "openQuestion" }
func (*SubmitAnswer) Name() string { return "submitAnswer" }
func (*CloseAnswers) Name() string { return "closeAnswers" }
func (*MarkAnswer) Name() string   { return "markAnswer" }
func (*CloseTile) Name() string    { return "closeTile" }
func (*PressBuzzer) Name() string  { return "pressBuzzer" }
func (*JudgeKeyword) Name() string { return "judgeKeyword" }
func (*SetStatus) Name() string    { return "setGameState" }
func (*Reset) Name() string        { return "reset" }

func (*SetConfig) obstacleCommand()    {}
func (*SelectTile) obstacleCommand()   {}
func (*OpenQuestion) obstacleCommand() {}
func (*SubmitAnswer) obstacleCommand() {}
func (*CloseAnswers) obstacleCommand() {}
func (*MarkAnswer) obstacleCommand()   {}
func (*CloseTile) obstacleCommand()    {}
func (*PressBuzzer) obstacleCommand()  {}
func (*JudgeKeyword) obstacleCommand() {}
func (*SetStatus) obstacleCommand()    {}
func (*Reset) obstacleCommand()        {}

package models

import "time"

// ObstacleStatus represents the state of the obstacle round
type ObstacleStatus string

const (
	ObstacleStatusIdle          ObstacleStatus = "idle"
	ObstacleStatusTileSelected  ObstacleStatus = "tile_selected"
	ObstacleStatusQuestionOpen  ObstacleStatus = "question_open"
	ObstacleStatusRoundFinished ObstacleStatus = "round_finished"
)

// TileStatus is the visibility of one concealed tile
type TileStatus string

const (
	TileStatusHidden   TileStatus = "hidden"
	TileStatusRevealed TileStatus = "revealed"
	TileStatusWrong    TileStatus = "wrong"
)

// ObstacleTileCount is the number of concealed tiles over the keyword image
const ObstacleTileCount = 4

// ObstacleTile is one concealed region and the question bound to it
type ObstacleTile struct {
	Index    int        `json:"index"`
	Question Question   `json:"question"`
	Status   TileStatus `json:"status"`
}

// ObstacleRound is the persisted state of the obstacle round
type ObstacleRound struct {
	Configured bool           `json:"configured"`
	Status     ObstacleStatus `json:"status"`

	// Keyword is the hidden phrase guessed via the buzzer
	Keyword string `json:"keyword"`

	Tiles []ObstacleTile `json:"tiles"`

	// ActiveTile is the index of the armed tile, if any
	ActiveTile     *int   `json:"activeTile,omitempty"`
	SelectorTeamID string `json:"selectorTeamId,omitempty"`

	Timer         Countdown    `json:"timer"`
	AnswersClosed bool         `json:"answersClosed"`
	Answers       []TeamAnswer `json:"answers"`

	// Buzzer is the keyword queue; it stays open for the whole round
	Buzzer BuzzerWindow `json:"buzzer"`

	// LockedTeamIDs are out of the round after a wrong keyword guess
	LockedTeamIDs []string `json:"lockedTeamIds"`

	KeywordWinnerTeamID  string `json:"keywordWinnerTeamId,omitempty"`
	KeywordPointsAwarded int    `json:"keywordPointsAwarded,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Locked reports whether teamID lost its keyword guess this round
func (r *ObstacleRound) Locked(teamID string) bool {
	for _, id := range r.LockedTeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// RevealedCount returns how many tiles have been revealed
func (r *ObstacleRound) RevealedCount() int {
	n := 0
	for _, t := range r.Tiles {
		if t.Status == TileStatusRevealed {
			n++
		}
	}
	return n
}

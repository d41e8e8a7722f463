// Package scoring computes point deltas. It never touches the team
// registry; engines apply the returned deltas inside their transaction.
package scoring

import (
	"sort"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/models"
)

// SpeedLadder is awarded to the 1st..4th fastest correct answers
var SpeedLadder = []int{40, 30, 20, 10}

// TieWindow groups correct answers that arrived this close to the first of the group
const TieWindow = 1000 * time.Millisecond

// DefaultTilePoints is used when an obstacle tile question carries no value
const DefaultTilePoints = 10

const (
	ReasonTileAnswer       = "tile_answer"
	ReasonKeyword          = "keyword"
	ReasonSpeedRank        = "speed_rank"
	ReasonSummitCorrect    = "summit_correct"
	ReasonSummitWrongWager = "summit_wrong_wager"
	ReasonStealCorrect     = "steal_correct"
	ReasonStealWrong       = "steal_wrong"
	ReasonStolenFrom       = "stolen_from"
	ReasonManual           = "manual"
)

// KeywordPoints tiers the keyword by how many tiles were already revealed
func KeywordPoints(revealed int) int {
	switch {
	case revealed <= 1:
		return 80
	case revealed == 2:
		return 60
	case revealed == 3:
		return 40
	default:
		return 20
	}
}

// TilePoints is what a correct obstacle tile answer is worth
func TilePoints(q models.Question) int {
	if q.PointValue > 0 {
		return q.PointValue
	}
	return DefaultTilePoints
}

// SpeedRanking ranks the correct answers by server receive time and
// returns one delta per correct answer, fastest first. Answers arriving
// within TieWindow of the first answer of their group share the group's
// ladder slots: the slot values are summed, divided evenly and floored.
// Answers ranked past the ladder get 0.
func SpeedRanking(answers []models.TeamAnswer) []models.ScoreDelta {
	correct := make([]models.TeamAnswer, 0, len(answers))
	for _, a := range answers {
		if a.Correct() {
			correct = append(correct, a)
		}
	}

	sort.SliceStable(correct, func(i, j int) bool {
		return correct[i].SubmittedAt.Before(correct[j].SubmittedAt)
	})

	deltas := make([]models.ScoreDelta, 0, len(correct))
	slot := 0
	for start := 0; start < len(correct); {
		end := start + 1
		for end < len(correct) && correct[end].SubmittedAt.Sub(correct[start].SubmittedAt) <= TieWindow {
			end++
		}

		size := end - start
		mass := 0
		for k := slot; k < slot+size && k < len(SpeedLadder); k++ {
			mass += SpeedLadder[k]
		}
		share := mass / size

		for _, a := range correct[start:end] {
			deltas = append(deltas, models.ScoreDelta{TeamID: a.TeamID, Points: share, Reason: ReasonSpeedRank})
		}

		slot += size
		start = end
	}

	return deltas
}

// SummitPrimary is the primary team's delta for its own answer.
// A hope star doubles a correct answer and costs the points on a wrong one.
func SummitPrimary(points int, correct, wagered bool) int {
	switch {
	case correct && wagered:
		return points * 2
	case correct:
		return points
	case wagered:
		return -points
	default:
		return 0
	}
}

// SummitChallenger is a stealing team's delta for its answer
func SummitChallenger(points int, correct bool) int {
	if correct {
		return points
	}
	return -(points / 2)
}

// SummitStolen is what the primary team loses when a challenger steals
func SummitStolen(points int) int {
	return -points
}

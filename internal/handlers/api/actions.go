package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/services/obstacle"
	"github.com/datkingvn/pvoil-sub000/internal/services/speed"
	"github.com/datkingvn/pvoil-sub000/internal/services/summit"
)

// actionRequest is the body of every round action
type actionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// decodeData fills cmd from the action payload; a missing payload leaves it zero
func decodeData(data json.RawMessage, cmd any) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, cmd); err != nil {
		return fmt.Errorf("%w: %v", gameerr.ErrInvalidInput, err)
	}
	return nil
}

func unknownAction(round, action string) error {
	return fmt.Errorf("%w: unknown %s action %q", gameerr.ErrInvalidInput, round, action)
}

func obstacleCommand(req *actionRequest) (obstacle.Command, error) {
	var cmd obstacle.Command
	switch req.Action {
	case "setConfig":
		cmd = &obstacle.SetConfig{}
	case "selectTile":
		cmd = &obstacle.SelectTile{}
	case "openQuestion":
		cmd = &obstacle.OpenQuestion{}
	case "submitAnswer":
		cmd = &obstacle.SubmitAnswer{}
	case "closeAnswers":
		cmd = &obstacle.CloseAnswers{}
	case "markAnswer":
		cmd = &obstacle.MarkAnswer{}
	case "closeTile":
		cmd = &obstacle.CloseTile{}
	case "pressBuzzer":
		cmd = &obstacle.PressBuzzer{}
	case "judgeKeyword":
		cmd = &obstacle.JudgeKeyword{}
	case "setGameState":
		cmd = &obstacle.SetStatus{}
	case "reset", "resetAll":
		cmd = &obstacle.Reset{}
	default:
		return nil, unknownAction("obstacle", req.Action)
	}
	return cmd, decodeData(req.Data, cmd)
}

func speedCommand(req *actionRequest) (speed.Command, error) {
	var cmd speed.Command
	switch req.Action {
	case "setConfig":
		cmd = &speed.SetConfig{}
	case "openQuestion":
		cmd = &speed.OpenQuestion{}
	case "submitAnswer":
		cmd = &speed.SubmitAnswer{}
	case "closeQuestion":
		cmd = &speed.CloseQuestion{}
	case "markAnswer":
		cmd = &speed.MarkAnswer{}
	case "calculatePoints":
		cmd = &speed.CalculatePoints{}
	case "nextQuestion":
		cmd = &speed.NextQuestion{}
	case "setGameState":
		cmd = &speed.SetStatus{}
	case "reset", "resetAll":
		cmd = &speed.Reset{}
	default:
		return nil, unknownAction("speed", req.Action)
	}
	return cmd, decodeData(req.Data, cmd)
}

func summitCommand(req *actionRequest) (summit.Command, error) {
	var cmd summit.Command
	switch req.Action {
	case "setConfig":
		cmd = &summit.SetConfig{}
	case "selectTeam":
		cmd = &summit.SelectTeam{}
	case "selectPackage":
		cmd = &summit.SelectPackage{}
	case "placeWager":
		cmd = &summit.PlaceWager{}
	case "openQuestion":
		cmd = &summit.OpenQuestion{}
	case "submitAnswer":
		cmd = &summit.SubmitAnswer{}
	case "endAnswering":
		cmd = &summit.EndAnswering{}
	case "markAnswer":
		cmd = &summit.MarkAnswer{}
	case "pressBuzzer":
		cmd = &summit.PressBuzzer{}
	case "revealAnswer":
		cmd = &summit.RevealAnswer{}
	case "nextQuestion":
		cmd = &summit.NextQuestion{}
	case "setGameState":
		cmd = &summit.SetStatus{}
	case "reset":
		cmd = &summit.Reset{}
	case "resetAll":
		cmd = &summit.ResetAll{}
	default:
		return nil, unknownAction("summit", req.Action)
	}
	return cmd, decodeData(req.Data, cmd)
}

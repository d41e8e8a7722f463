// Package gameerr holds the typed rejections every round engine reports.
// Each GameError belongs to exactly one Kind so callers can decide whether
// to re-fetch state and retry, fix their input, or give up.
package gameerr

import "errors"

// Kind classifies a GameError
type Kind string

const (
	// KindValidation means the request itself was malformed
	KindValidation Kind = "validation"

	// KindStateConflict means the action is not valid for the current status or ownership
	KindStateConflict Kind = "state_conflict"

	// KindResourceExhausted means the question inventory cannot satisfy a draw
	KindResourceExhausted Kind = "resource_exhausted"

	// KindNotFound means a referenced team, question or package is absent
	KindNotFound Kind = "not_found"

	// KindConflictRetry means concurrent writers kept winning the compare-and-set
	KindConflictRetry Kind = "conflict_retry"

	// KindInternal is returned by KindOf for errors that are not GameErrors
	KindInternal Kind = "internal"
)

// GameError is a custom error type for round engine rejections
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Kind returns the category the error belongs to
func (e GameError) Kind() Kind {
	if k, ok := kinds[e]; ok {
		return k
	}
	return KindInternal
}

// Code returns a stable machine-readable identifier for the error
func (e GameError) Code() string {
	if c, ok := codes[e]; ok {
		return c
	}
	return "Internal"
}

const (
	ErrInvalidInput          GameError = "invalid input"
	ErrNotOpen               GameError = "question is not open for answers"
	ErrAlreadyAnswered       GameError = "team has already answered this question"
	ErrTeamLocked            GameError = "team is locked out"
	ErrAlreadyPressed        GameError = "team has already pressed the buzzer"
	ErrWindowClosed          GameError = "buzzer window is closed"
	ErrNothingToJudge        GameError = "nothing to judge"
	ErrAlreadyJudged         GameError = "answer has already been judged"
	ErrAlreadyScored         GameError = "points have already been calculated for this question"
	ErrInvalidStatus         GameError = "action is not allowed in the current status"
	ErrTileUnavailable       GameError = "tile cannot be selected"
	ErrPackageAlreadyOwned   GameError = "team already owns a package"
	ErrAlreadyWagered        GameError = "team has already placed its hope star"
	ErrNotYourTurn           GameError = "team may not answer right now"
	ErrInsufficientInventory GameError = "not enough unused questions in the bank"
	ErrTeamNotFound          GameError = "team not found"
	ErrQuestionNotFound      GameError = "question not found"
	ErrRoundNotConfigured    GameError = "round has not been configured"
	ErrConcurrentUpdate      GameError = "state changed concurrently, please retry"
)

var kinds = map[GameError]Kind{
	ErrInvalidInput:          KindValidation,
	ErrNotOpen:               KindStateConflict,
	ErrAlreadyAnswered:       KindStateConflict,
	ErrTeamLocked:            KindStateConflict,
	ErrAlreadyPressed:        KindStateConflict,
	ErrWindowClosed:          KindStateConflict,
	ErrNothingToJudge:        KindStateConflict,
	ErrAlreadyJudged:         KindStateConflict,
	ErrAlreadyScored:         KindStateConflict,
	ErrInvalidStatus:         KindStateConflict,
	ErrTileUnavailable:       KindStateConflict,
	ErrPackageAlreadyOwned:   KindStateConflict,
	ErrAlreadyWagered:        KindStateConflict,
	ErrNotYourTurn:           KindStateConflict,
	ErrInsufficientInventory: KindResourceExhausted,
	ErrTeamNotFound:          KindNotFound,
	ErrQuestionNotFound:      KindNotFound,
	ErrRoundNotConfigured:    KindNotFound,
	ErrConcurrentUpdate:      KindConflictRetry,
}

var codes = map[GameError]string{
	ErrInvalidInput:          "InvalidInput",
	ErrNotOpen:               "NotOpen",
	ErrAlreadyAnswered:       "AlreadyAnswered",
	ErrTeamLocked:            "TeamLocked",
	ErrAlreadyPressed:        "AlreadyPressed",
	ErrWindowClosed:          "WindowClosed",
	ErrNothingToJudge:        "NothingToJudge",
	ErrAlreadyJudged:         "AlreadyJudged",
	ErrAlreadyScored:         "AlreadyScored",
	ErrInvalidStatus:         "InvalidStatus",
	ErrTileUnavailable:       "TileUnavailable",
	ErrPackageAlreadyOwned:   "PackageAlreadyOwned",
	ErrAlreadyWagered:        "AlreadyWagered",
	ErrNotYourTurn:           "NotYourTurn",
	ErrInsufficientInventory: "InsufficientInventory",
	ErrTeamNotFound:          "TeamNotFound",
	ErrQuestionNotFound:      "QuestionNotFound",
	ErrRoundNotConfigured:    "RoundNotConfigured",
	ErrConcurrentUpdate:      "ConcurrentUpdate",
}

// As extracts the GameError wrapped somewhere in err
func As(err error) (GameError, bool) {
	var ge GameError
	if errors.As(err, &ge) {
		return ge, true
	}
	return "", false
}

// KindOf reports the Kind of err, or KindInternal when err is not a GameError
func KindOf(err error) Kind {
	if ge, ok := As(err); ok {
		return ge.Kind()
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or "Internal" when err is not a GameError
func CodeOf(err error) string {
	if ge, ok := As(err); ok {
		return ge.Code()
	}
	return "Internal"
}

package obstacle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"github.com/datkingvn/pvoil-sub000/internal/services/buzzer"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/datkingvn/pvoil-sub000/internal/services/scoring"
	"github.com/datkingvn/pvoil-sub000/internal/services/timer"
	"go.uber.org/zap"
)

const roundName = "obstacle"

// service implements the Service interface
type service struct {
	answerSeconds int
	store         document.Repository
	publisher     events.Publisher
	clock         clock.Clock
	uuid          uuid.UUID
	logger        *zap.Logger
}

// New creates a new obstacle engine
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Store == nil {
		return nil, ErrNilStore
	}

	if cfg.Publisher == nil {
		return nil, ErrNilPublisher
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	answerSeconds := cfg.AnswerSeconds
	if answerSeconds <= 0 {
		answerSeconds = DefaultAnswerSeconds
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		answerSeconds: answerSeconds,
		store:         cfg.Store,
		publisher:     cfg.Publisher,
		clock:         cfg.Clock,
		uuid:          cfg.UUIDGenerator,
		logger:        logger.Named(roundName),
	}, nil
}

// RoundKey is the document key of a show's obstacle round
func RoundKey(showID string) string {
	return document.ShowKey(showID, "round", roundName)
}

// step is the state one command works on inside the transaction
type step struct {
	round  *models.ObstacleRound
	teams  *models.TeamRegistry
	now    time.Time
	deltas []models.ScoreDelta
}

func (st *step) award(teamID string, points int, reason string) error {
	d := models.ScoreDelta{TeamID: teamID, Points: points, Reason: reason}
	if err := registry.ApplyDeltas(st.teams, []models.ScoreDelta{d}); err != nil {
		return err
	}
	st.deltas = append(st.deltas, d)
	return nil
}

// Execute applies one command in a single compare-and-set transaction
func (s *service) Execute(ctx context.Context, input *ExecuteInput) (*StateOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	if input.Command == nil {
		return nil, fmt.Errorf("%w: command is required", gameerr.ErrInvalidInput)
	}

	var out *StateOutput
	err := s.store.Transact(ctx, &document.TransactInput{
		Keys: []string{RoundKey(input.ShowID), registry.TeamsKey(input.ShowID)},
		Fn: func(tx document.Tx) error {
			round, err := loadRound(tx, input.ShowID)
			if err != nil {
				return err
			}

			teams, err := registry.Load(tx, input.ShowID)
			if err != nil {
				return err
			}

			st := &step{round: round, teams: teams, now: s.clock.Now()}
			if err := s.apply(st, input.Command); err != nil {
				return err
			}
			round.UpdatedAt = st.now

			if err := tx.Store(RoundKey(input.ShowID), round); err != nil {
				return err
			}
			if err := registry.Save(tx, input.ShowID, teams); err != nil {
				return err
			}

			out = &StateOutput{
				Round:            round,
				Teams:            teams,
				RemainingSeconds: timer.Remaining(round.Timer, st.now),
				Deltas:           st.deltas,
			}
			return nil
		},
	})
	if err != nil {
		s.logger.Debug("command rejected",
			zap.String("show_id", input.ShowID),
			zap.String("action", input.Command.Name()),
			zap.String("code", gameerr.CodeOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("command applied",
		zap.String("show_id", input.ShowID),
		zap.String("round", roundName),
		zap.String("action", input.Command.Name()),
		zap.String("status", string(out.Round.Status)),
		zap.Int("deltas", len(out.Deltas)),
	)

	if err := s.publisher.Publish(ctx, &events.PublishInput{
		ShowID: input.ShowID,
		Round:  roundName,
		Action: input.Command.Name(),
		State:  out,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("show_id", input.ShowID), zap.Error(err))
	}

	return out, nil
}

// GetState reads the round; the result may lag a concurrent writer
func (s *service) GetState(ctx context.Context, input *GetStateInput) (*StateOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	round := newRound()
	if _, err := s.store.Get(ctx, &document.GetInput{Key: RoundKey(input.ShowID), Dest: round}); err != nil {
		return nil, err
	}

	teams := &models.TeamRegistry{Teams: []*models.Team{}}
	if _, err := s.store.Get(ctx, &document.GetInput{Key: registry.TeamsKey(input.ShowID), Dest: teams}); err != nil {
		return nil, err
	}

	return &StateOutput{
		Round:            round,
		Teams:            teams,
		RemainingSeconds: timer.Remaining(round.Timer, s.clock.Now()),
	}, nil
}

func newRound() *models.ObstacleRound {
	return &models.ObstacleRound{
		Status:  models.ObstacleStatusIdle,
		Tiles:   []models.ObstacleTile{},
		Answers: []models.TeamAnswer{},
		Buzzer:  models.BuzzerWindow{Presses: []models.BuzzerPress{}},

		LockedTeamIDs: []string{},
	}
}

func loadRound(tx document.Tx, showID string) (*models.ObstacleRound, error) {
	round := newRound()
	if _, err := tx.Load(RoundKey(showID), round); err != nil {
		return nil, err
	}
	return round, nil
}

// apply dispatches on the command type
func (s *service) apply(st *step, cmd Command) error {
	switch c := cmd.(type) {
	case *SetConfig:
		return s.setConfig(st, c)
	case *Reset:
		return s.reset(st)
	}

	if !st.round.Configured {
		return gameerr.ErrRoundNotConfigured
	}

	if st.round.Status == models.ObstacleStatusRoundFinished {
		if _, ok := cmd.(*PressBuzzer); ok {
			return gameerr.ErrWindowClosed
		}
		return fmt.Errorf("%w: round is finished", gameerr.ErrInvalidStatus)
	}

	switch c := cmd.(type) {
	case *SelectTile:
		return s.selectTile(st, c)
	case *OpenQuestion:
		return s.openQuestion(st)
	case *SubmitAnswer:
		return s.submitAnswer(st, c)
	case *CloseAnswers:
		return s.closeAnswers(st)
	case *MarkAnswer:
		return s.markAnswer(st, c)
	case *CloseTile:
		return s.closeTile(st)
	case *PressBuzzer:
		return s.pressBuzzer(st, c)
	case *JudgeKeyword:
		return s.judgeKeyword(st, c)
	case *SetStatus:
		return s.setStatus(st, c)
	default:
		return fmt.Errorf("%w: unknown obstacle command %T", gameerr.ErrInvalidInput, cmd)
	}
}

func (s *service) setConfig(st *step, c *SetConfig) error {
	keyword := strings.TrimSpace(c.Keyword)
	if keyword == "" {
		return fmt.Errorf("%w: keyword is required", gameerr.ErrInvalidInput)
	}

	if len(c.Questions) != models.ObstacleTileCount {
		return fmt.Errorf("%w: need exactly %d tile questions, got %d",
			gameerr.ErrInvalidInput, models.ObstacleTileCount, len(c.Questions))
	}

	tiles := make([]models.ObstacleTile, 0, models.ObstacleTileCount)
	for i, q := range c.Questions {
		if strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.AnswerText) == "" {
			return fmt.Errorf("%w: tile %d needs question and answer text", gameerr.ErrInvalidInput, i+1)
		}
		if q.ID == "" {
			q.ID = s.uuid.NewUUID()
		}
		if q.PointValue <= 0 {
			q.PointValue = scoring.DefaultTilePoints
		}
		tiles = append(tiles, models.ObstacleTile{Index: i, Question: q, Status: models.TileStatusHidden})
	}

	*st.round = *newRound()
	st.round.Configured = true
	st.round.Keyword = keyword
	st.round.Tiles = tiles
	buzzer.Open(&st.round.Buzzer, st.now, 0)

	return nil
}

func (s *service) reset(st *step) error {
	if !st.round.Configured {
		*st.round = *newRound()
		return nil
	}

	for i := range st.round.Tiles {
		st.round.Tiles[i].Status = models.TileStatusHidden
	}
	st.round.Status = models.ObstacleStatusIdle
	st.round.ActiveTile = nil
	st.round.SelectorTeamID = ""
	st.round.AnswersClosed = false
	st.round.Answers = []models.TeamAnswer{}
	st.round.KeywordWinnerTeamID = ""
	st.round.KeywordPointsAwarded = 0
	st.round.LockedTeamIDs = []string{}
	timer.Stop(&st.round.Timer)
	buzzer.Open(&st.round.Buzzer, st.now, 0)

	return nil
}

func (s *service) selectTile(st *step, c *SelectTile) error {
	if st.round.Status != models.ObstacleStatusIdle {
		return fmt.Errorf("%w: tiles can only be chosen while idle", gameerr.ErrInvalidStatus)
	}

	team, err := registry.RequireTeam(st.teams, c.TeamID)
	if err != nil {
		return err
	}

	if st.round.Locked(team.ID) {
		return fmt.Errorf("%w: team %s", gameerr.ErrTeamLocked, team.ID)
	}

	if c.TileIndex < 0 || c.TileIndex >= len(st.round.Tiles) {
		return fmt.Errorf("%w: tile %d", gameerr.ErrQuestionNotFound, c.TileIndex)
	}

	if st.round.Tiles[c.TileIndex].Status != models.TileStatusHidden {
		return fmt.Errorf("%w: tile %d is %s", gameerr.ErrTileUnavailable, c.TileIndex, st.round.Tiles[c.TileIndex].Status)
	}

	idx := c.TileIndex
	st.round.ActiveTile = &idx
	st.round.SelectorTeamID = team.ID
	st.round.Status = models.ObstacleStatusTileSelected

	return nil
}

func (s *service) openQuestion(st *step) error {
	if st.round.Status != models.ObstacleStatusTileSelected || st.round.ActiveTile == nil {
		return fmt.Errorf("%w: no tile is armed", gameerr.ErrInvalidStatus)
	}

	seconds := st.round.Tiles[*st.round.ActiveTile].Question.TimeLimitSeconds
	if seconds <= 0 {
		seconds = s.answerSeconds
	}

	timer.Start(&st.round.Timer, st.now, seconds)
	st.round.Answers = []models.TeamAnswer{}
	st.round.AnswersClosed = false
	st.round.Status = models.ObstacleStatusQuestionOpen

	return nil
}

func (s *service) submitAnswer(st *step, c *SubmitAnswer) error {
	if st.round.Status != models.ObstacleStatusQuestionOpen || st.round.AnswersClosed || timer.Expired(st.round.Timer, st.now) {
		return gameerr.ErrNotOpen
	}

	team, err := registry.RequireTeam(st.teams, c.TeamID)
	if err != nil {
		return err
	}

	if st.round.Locked(team.ID) {
		return fmt.Errorf("%w: team %s", gameerr.ErrTeamLocked, team.ID)
	}

	answer := strings.TrimSpace(c.Answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", gameerr.ErrInvalidInput)
	}

	if models.FindAnswer(st.round.Answers, team.ID) >= 0 {
		return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyAnswered, team.ID)
	}

	name := c.TeamName
	if name == "" {
		name = team.Name
	}

	st.round.Answers = append(st.round.Answers, models.TeamAnswer{
		TeamID:                team.ID,
		TeamName:              name,
		AnswerText:            answer,
		SubmittedAt:           st.now,
		ClientTimestampMillis: c.ClientTimestampMillis,
		Role:                  models.AnswerRoleOpen,
	})

	return nil
}

func (s *service) closeAnswers(st *step) error {
	if st.round.Status != models.ObstacleStatusQuestionOpen {
		return gameerr.ErrNotOpen
	}
	st.round.AnswersClosed = true
	return nil
}

func (s *service) markAnswer(st *step, c *MarkAnswer) error {
	if c.Correct == nil {
		return fmt.Errorf("%w: correct is required", gameerr.ErrInvalidInput)
	}

	if st.round.Status != models.ObstacleStatusQuestionOpen || st.round.ActiveTile == nil {
		return fmt.Errorf("%w: no tile question is open", gameerr.ErrNothingToJudge)
	}

	i := models.FindAnswer(st.round.Answers, c.TeamID)
	if i < 0 {
		return fmt.Errorf("%w: no answer from team %s", gameerr.ErrNothingToJudge, c.TeamID)
	}

	a := &st.round.Answers[i]
	if a.Graded() {
		return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyJudged, c.TeamID)
	}

	correct := *c.Correct
	a.IsCorrect = &correct

	tile := &st.round.Tiles[*st.round.ActiveTile]
	if correct {
		points := scoring.TilePoints(tile.Question)
		if err := st.award(a.TeamID, points, scoring.ReasonTileAnswer); err != nil {
			return err
		}
		a.PointsAwarded = points
		tile.Status = models.TileStatusRevealed
	}

	for _, other := range st.round.Answers {
		if !other.Graded() {
			return nil
		}
	}

	s.finishTile(st)
	return nil
}

func (s *service) closeTile(st *step) error {
	if st.round.ActiveTile == nil {
		return fmt.Errorf("%w: no tile is armed", gameerr.ErrInvalidStatus)
	}

	for _, a := range st.round.Answers {
		if !a.Graded() {
			return fmt.Errorf("%w: team %s still has an ungraded answer", gameerr.ErrInvalidStatus, a.TeamID)
		}
	}

	s.finishTile(st)
	return nil
}

// finishTile marks an unrevealed armed tile wrong and returns to idle
func (s *service) finishTile(st *step) {
	tile := &st.round.Tiles[*st.round.ActiveTile]
	if tile.Status != models.TileStatusRevealed {
		tile.Status = models.TileStatusWrong
	}

	st.round.Status = models.ObstacleStatusIdle
	st.round.ActiveTile = nil
	st.round.SelectorTeamID = ""
	st.round.AnswersClosed = false
	st.round.Answers = []models.TeamAnswer{}
	timer.Stop(&st.round.Timer)
}

func (s *service) pressBuzzer(st *step, c *PressBuzzer) error {
	team, err := registry.RequireTeam(st.teams, c.TeamID)
	if err != nil {
		return err
	}

	if st.round.Locked(team.ID) {
		return fmt.Errorf("%w: team %s", gameerr.ErrTeamLocked, team.ID)
	}

	name := c.TeamName
	if name == "" {
		name = team.Name
	}

	_, err = buzzer.Press(&st.round.Buzzer, st.now, buzzer.PressInput{
		PressID:               s.uuid.NewUUID(),
		TeamID:                team.ID,
		TeamName:              name,
		ClientTimestampMillis: c.ClientTimestampMillis,
	})
	return err
}

func (s *service) judgeKeyword(st *step, c *JudgeKeyword) error {
	if c.Correct == nil {
		return fmt.Errorf("%w: correct is required", gameerr.ErrInvalidInput)
	}

	head := buzzer.Winner(&st.round.Buzzer)
	if head == nil {
		return fmt.Errorf("%w: nobody has buzzed for the keyword", gameerr.ErrNothingToJudge)
	}

	if c.TeamID != "" && c.TeamID != head.TeamID {
		return fmt.Errorf("%w: team %s is not first in the queue", gameerr.ErrNothingToJudge, c.TeamID)
	}

	if !*c.Correct {
		popped, err := buzzer.DisqualifyWinner(&st.round.Buzzer)
		if err != nil {
			return err
		}
		st.round.LockedTeamIDs = append(st.round.LockedTeamIDs, popped.TeamID)
		return nil
	}

	points := scoring.KeywordPoints(st.round.RevealedCount())
	if err := st.award(head.TeamID, points, scoring.ReasonKeyword); err != nil {
		return err
	}

	st.round.KeywordWinnerTeamID = head.TeamID
	st.round.KeywordPointsAwarded = points
	for i := range st.round.Tiles {
		st.round.Tiles[i].Status = models.TileStatusRevealed
	}
	st.round.Status = models.ObstacleStatusRoundFinished
	st.round.ActiveTile = nil
	st.round.AnswersClosed = true
	timer.Stop(&st.round.Timer)
	buzzer.Close(&st.round.Buzzer)

	return nil
}

// setStatus only supports abandoning an armed tile; the tile stays hidden
func (s *service) setStatus(st *step, c *SetStatus) error {
	if c.Status != models.ObstacleStatusIdle {
		return fmt.Errorf("%w: cannot force status %q", gameerr.ErrInvalidStatus, c.Status)
	}

	switch st.round.Status {
	case models.ObstacleStatusTileSelected, models.ObstacleStatusQuestionOpen:
	default:
		return fmt.Errorf("%w: nothing to abandon in %s", gameerr.ErrInvalidStatus, st.round.Status)
	}

	for _, a := range st.round.Answers {
		if a.Graded() {
			return fmt.Errorf("%w: answers were already graded", gameerr.ErrInvalidStatus)
		}
	}

	st.round.Status = models.ObstacleStatusIdle
	st.round.ActiveTile = nil
	st.round.SelectorTeamID = ""
	st.round.AnswersClosed = false
	st.round.Answers = []models.TeamAnswer{}
	timer.Stop(&st.round.Timer)

	return nil
}

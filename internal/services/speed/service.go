package speed

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
	"github.com/datkingvn/pvoil-sub000/internal/services/match"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/datkingvn/pvoil-sub000/internal/services/scoring"
	"github.com/datkingvn/pvoil-sub000/internal/services/timer"
	"go.uber.org/zap"
)

const roundName = "speed"

// service implements the Service interface
type service struct {
	questionSeconds int
	store           document.Repository
	publisher       events.Publisher
	clock           clock.Clock
	uuid            uuid.UUID
	logger          *zap.Logger
}

// New creates a new speed engine
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
		return nil, ErrNilUUID
	}

	seconds := cfg.QuestionSeconds
	if seconds <= 0 {
		seconds = DefaultQuestionSeconds
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		questionSeconds: seconds,
		store:           cfg.Store,
		publisher:       cfg.Publisher,
		clock:           cfg.Clock,
		uuid:            cfg.UUIDGenerator,
		logger:          logger.Named(roundName),
	}, nil
}

// RoundKey is the document key of a show's speed round
func RoundKey(showID string) string {
	return document.ShowKey(showID, "round", roundName)
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
			round := newRound()
			if _, err := tx.Load(RoundKey(input.ShowID), round); err != nil {
				return err
			}

			teams, err := registry.Load(tx, input.ShowID)
			if err != nil {
				return err
			}

			now := s.clock.Now()
			deltas, err := s.apply(round, teams, now, input.Command)
			if err != nil {
				return err
			}

			if err := registry.ApplyDeltas(teams, deltas); err != nil {
				return err
			}
			round.UpdatedAt = now

			if err := tx.Store(RoundKey(input.ShowID), round); err != nil {
				return err
			}
			if err := registry.Save(tx, input.ShowID, teams); err != nil {
				return err
			}

			out = &StateOutput{
				Round:            round,
				Teams:            teams,
				RemainingSeconds: timer.Remaining(round.Timer, now),
				Deltas:           deltas,
			}
			return nil
		},
	})
	if err != nil {
		s.logger.Debug("command rejected",
			zap.String("show_id", input.ShowID),
			zap.String("action", input.Command.Name()),
			zap.String("code", gameerr.CodeOf(err)),
		)
		return nil, err
	}

	s.logger.Info("command applied",
		zap.String("show_id", input.ShowID),
		zap.String("round", roundName),
		zap.String("action", input.Command.Name()),
		zap.String("status", string(out.Round.Status)),
		zap.Int("question", out.Round.CurrentIndex),
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

// GetState reads the round with its derived countdown
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

func newRound() *models.SpeedRound {
	return &models.SpeedRound{
		Status:    models.SpeedStatusIdle,
		Questions: []models.Question{},
		Answers:   []models.TeamAnswer{},
	}
}

func (s *service) apply(round *models.SpeedRound, teams *models.TeamRegistry, now time.Time, cmd Command) ([]models.ScoreDelta, error) {
	switch c := cmd.(type) {
	case *SetConfig:
		return nil, s.setConfig(round, c)
	case *Reset:
		rewind(round)
		return nil, nil
	}

	if !round.Configured {
		return nil, gameerr.ErrRoundNotConfigured
	}

	if round.Status == models.SpeedStatusRoundFinished {
		return nil, fmt.Errorf("%w: round is finished", gameerr.ErrInvalidStatus)
	}

	switch c := cmd.(type) {
	case *OpenQuestion:
		return nil, s.openQuestion(round, now)
	case *SubmitAnswer:
		return nil, submitAnswer(round, teams, now, c)
	case *CloseQuestion:
		if round.Status != models.SpeedStatusQuestionOpen {
			return nil, gameerr.ErrNotOpen
		}
		closeQuestion(round)
		return nil, nil
	case *MarkAnswer:
		return nil, markAnswer(round, c)
	case *CalculatePoints:
		return calculatePoints(round, now)
	case *NextQuestion:
		return nil, nextQuestion(round)
	case *SetStatus:
		return nil, setStatus(round, c)
	default:
		return nil, fmt.Errorf("%w: unknown speed command %T", gameerr.ErrInvalidInput, cmd)
	}
}

func (s *service) setConfig(round *models.SpeedRound, c *SetConfig) error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", gameerr.ErrInvalidInput)
	}

	questions := make([]models.Question, 0, len(c.Questions))
	for i, q := range c.Questions {
		if strings.TrimSpace(q.Text) == "" || strings.TrimSpace(q.AnswerText) == "" {
			return fmt.Errorf("%w: question %d needs text and answer", gameerr.ErrInvalidInput, i+1)
		}
		if q.ID == "" {
			q.ID = s.uuid.NewUUID()
		}
		q.Order = i + 1
		questions = append(questions, q)
	}

	*round = *newRound()
	round.Configured = true
	round.Questions = questions

	return nil
}

// rewind returns a configured round to its first question
func rewind(round *models.SpeedRound) {
	round.Status = models.SpeedStatusIdle
	round.CurrentIndex = 0
	round.Answers = []models.TeamAnswer{}
	round.Scored = false
	timer.Stop(&round.Timer)
}

func (s *service) openQuestion(round *models.SpeedRound, now time.Time) error {
	if round.Status != models.SpeedStatusIdle {
		return fmt.Errorf("%w: a question is already in play", gameerr.ErrInvalidStatus)
	}

	q := round.CurrentQuestion()
	if q == nil {
		return fmt.Errorf("%w: no question at index %d", gameerr.ErrQuestionNotFound, round.CurrentIndex)
	}

	seconds := q.TimeLimitSeconds
	if seconds <= 0 {
		seconds = s.questionSeconds
	}

	timer.Start(&round.Timer, now, seconds)
	round.Answers = []models.TeamAnswer{}
	round.Scored = false
	round.Status = models.SpeedStatusQuestionOpen

	return nil
}

func submitAnswer(round *models.SpeedRound, teams *models.TeamRegistry, now time.Time, c *SubmitAnswer) error {
	if round.Status != models.SpeedStatusQuestionOpen || timer.Expired(round.Timer, now) {
		return gameerr.ErrNotOpen
	}

	team, err := registry.RequireTeam(teams, c.TeamID)
	if err != nil {
		return err
	}

	answer := strings.TrimSpace(c.Answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", gameerr.ErrInvalidInput)
	}

	if models.FindAnswer(round.Answers, team.ID) >= 0 {
		return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyAnswered, team.ID)
	}

	q := round.CurrentQuestion()
	accepted := append([]string{q.AnswerText}, q.AcceptedAnswers...)
	correct := match.MatchesAny(answer, accepted...)

	name := c.TeamName
	if name == "" {
		name = team.Name
	}

	round.Answers = append(round.Answers, models.TeamAnswer{
		TeamID:                team.ID,
		TeamName:              name,
		AnswerText:            answer,
		IsCorrect:             &correct,
		SubmittedAt:           now,
		ClientTimestampMillis: c.ClientTimestampMillis,
		Role:                  models.AnswerRoleOpen,
	})

	return nil
}

func closeQuestion(round *models.SpeedRound) {
	round.Status = models.SpeedStatusQuestionClosed
	timer.Stop(&round.Timer)
}

func markAnswer(round *models.SpeedRound, c *MarkAnswer) error {
	if c.Correct == nil {
		return fmt.Errorf("%w: correct is required", gameerr.ErrInvalidInput)
	}

	if round.Scored {
		return gameerr.ErrAlreadyScored
	}

	if round.Status != models.SpeedStatusQuestionOpen && round.Status != models.SpeedStatusQuestionClosed {
		return fmt.Errorf("%w: no question in play", gameerr.ErrNothingToJudge)
	}

	i := models.FindAnswer(round.Answers, c.TeamID)
	if i < 0 {
		return fmt.Errorf("%w: no answer from team %s", gameerr.ErrNothingToJudge, c.TeamID)
	}

	correct := *c.Correct
	round.Answers[i].IsCorrect = &correct

	return nil
}

func calculatePoints(round *models.SpeedRound, now time.Time) ([]models.ScoreDelta, error) {
	if round.Scored {
		return nil, gameerr.ErrAlreadyScored
	}

	switch {
	case round.Status == models.SpeedStatusQuestionClosed:
	case round.Status == models.SpeedStatusQuestionOpen && timer.Expired(round.Timer, now):
		closeQuestion(round)
	default:
		return nil, fmt.Errorf("%w: close the question before scoring", gameerr.ErrInvalidStatus)
	}

	deltas := scoring.SpeedRanking(round.Answers)
	for _, d := range deltas {
		if i := models.FindAnswer(round.Answers, d.TeamID); i >= 0 {
			round.Answers[i].PointsAwarded = d.Points
		}
	}
	round.Scored = true

	return deltas, nil
}

func nextQuestion(round *models.SpeedRound) error {
	if round.Status != models.SpeedStatusQuestionClosed {
		return fmt.Errorf("%w: close the question first", gameerr.ErrInvalidStatus)
	}

	round.CurrentIndex++
	round.Answers = []models.TeamAnswer{}
	round.Scored = false
	timer.Stop(&round.Timer)

	if round.CurrentIndex >= len(round.Questions) {
		round.Status = models.SpeedStatusRoundFinished
		return nil
	}

	round.Status = models.SpeedStatusIdle
	return nil
}

// setStatus only supports dropping an unscored question back to idle
func setStatus(round *models.SpeedRound, c *SetStatus) error {
	if c.Status != models.SpeedStatusIdle {
		return fmt.Errorf("%w: cannot force status %q", gameerr.ErrInvalidStatus, c.Status)
	}

	if round.Status == models.SpeedStatusIdle || round.Scored {
		return fmt.Errorf("%w: nothing to abandon in %s", gameerr.ErrInvalidStatus, round.Status)
	}

	round.Status = models.SpeedStatusIdle
	round.Answers = []models.TeamAnswer{}
	timer.Stop(&round.Timer)

	return nil
}

package summit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/datkingvn/pvoil-sub000/internal/common/clock"
	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/random"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"github.com/datkingvn/pvoil-sub000/internal/services/buzzer"
	"github.com/datkingvn/pvoil-sub000/internal/services/inventory"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/datkingvn/pvoil-sub000/internal/services/scoring"
	"github.com/datkingvn/pvoil-sub000/internal/services/timer"
	"go.uber.org/zap"
)

const roundName = "summit"

// service implements the Service interface
type service struct {
	buzzerSeconds int
	teamsToFinish int
	store         document.Repository
	publisher     events.Publisher
	clock         clock.Clock
	uuid          uuid.UUID
	picker        random.Picker
	logger        *zap.Logger
}

// New creates a new summit engine
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

	if cfg.Picker == nil {
		return nil, ErrNilPicker
	}

	buzzerSeconds := cfg.BuzzerSeconds
	if buzzerSeconds <= 0 {
		buzzerSeconds = DefaultBuzzerSeconds
	}

	teamsToFinish := cfg.TeamsToFinish
	if teamsToFinish <= 0 {
		teamsToFinish = DefaultTeamsToFinish
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		buzzerSeconds: buzzerSeconds,
		teamsToFinish: teamsToFinish,
		store:         cfg.Store,
		publisher:     cfg.Publisher,
		clock:         cfg.Clock,
		uuid:          cfg.UUIDGenerator,
		picker:        cfg.Picker,
		logger:        logger.Named(roundName),
	}, nil
}

// RoundKey is the document key of a show's summit round
func RoundKey(showID string) string {
	return document.ShowKey(showID, "round", roundName)
}

// play is everything one command may touch
type play struct {
	round  *models.SummitRound
	teams  *models.TeamRegistry
	bank   *models.QuestionBank
	now    time.Time
	deltas []models.ScoreDelta
}

func (p *play) award(teamID string, points int, reason string) {
	p.deltas = append(p.deltas, models.ScoreDelta{TeamID: teamID, Points: points, Reason: reason})
}

// Execute applies one command in a single compare-and-set transaction
// over the round, the teams and the bank
func (s *service) Execute(ctx context.Context, input *ExecuteInput) (*StateOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	if input.Command == nil {
		return nil, fmt.Errorf("%w: command is required", gameerr.ErrInvalidInput)
	}

	showID := input.ShowID
	var out *StateOutput
	err := s.store.Transact(ctx, &document.TransactInput{
		Keys: []string{RoundKey(showID), registry.TeamsKey(showID), inventory.BankKey(showID)},
		Fn: func(tx document.Tx) error {
			round := newRound()
			if _, err := tx.Load(RoundKey(showID), round); err != nil {
				return err
			}

			teams, err := registry.Load(tx, showID)
			if err != nil {
				return err
			}

			bank, err := inventory.Load(tx, showID)
			if err != nil {
				return err
			}

			p := &play{round: round, teams: teams, bank: bank, now: s.clock.Now()}
			if err := s.apply(p, input.Command); err != nil {
				return err
			}

			if err := registry.ApplyDeltas(teams, p.deltas); err != nil {
				return err
			}
			round.UpdatedAt = p.now

			if err := tx.Store(RoundKey(showID), round); err != nil {
				return err
			}
			if err := registry.Save(tx, showID, teams); err != nil {
				return err
			}
			if err := inventory.Save(tx, showID, bank); err != nil {
				return err
			}

			out = s.output(round, teams, bank, p.now)
			out.Deltas = p.deltas
			return nil
		},
	})
	if err != nil {
		s.logger.Debug("command rejected",
			zap.String("show_id", showID),
			zap.String("action", input.Command.Name()),
			zap.String("code", gameerr.CodeOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("command applied",
		zap.String("show_id", showID),
		zap.String("round", roundName),
		zap.String("action", input.Command.Name()),
		zap.String("status", string(out.Round.Status)),
		zap.String("primary", out.Round.PrimaryTeamID),
	)

	if err := s.publisher.Publish(ctx, &events.PublishInput{
		ShowID: showID,
		Round:  roundName,
		Action: input.Command.Name(),
		State:  out,
	}); err != nil {
		s.logger.Warn("failed to publish event", zap.String("show_id", showID), zap.Error(err))
	}

	return out, nil
}

// GetState reads the round outside any transaction
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

	bank := &models.QuestionBank{Items: []*models.QuestionBankItem{}}
	if _, err := s.store.Get(ctx, &document.GetInput{Key: inventory.BankKey(input.ShowID), Dest: bank}); err != nil {
		return nil, err
	}

	return s.output(round, teams, bank, s.clock.Now()), nil
}

func (s *service) output(round *models.SummitRound, teams *models.TeamRegistry, bank *models.QuestionBank, now time.Time) *StateOutput {
	remaining := timer.Remaining(round.Timer, now)
	if round.Status == models.SummitStatusBuzzerWindow {
		remaining = buzzer.Remaining(&round.Buzzer, now)
	}

	return &StateOutput{
		Round:            round,
		Teams:            teams,
		RemainingSeconds: remaining,
		Available:        inventory.Available(bank),
	}
}

func newRound() *models.SummitRound {
	return &models.SummitRound{
		Status:           models.SummitStatusTeamSelection,
		Answers:          []models.TeamAnswer{},
		Buzzer:           models.BuzzerWindow{Presses: []models.BuzzerPress{}},
		CompletedTeamIDs: []string{},
	}
}

func (s *service) apply(p *play, cmd Command) error {
	switch c := cmd.(type) {
	case *SetConfig:
		return s.setConfig(p, c)
	case *Reset:
		s.restart(p)
		return nil
	case *ResetAll:
		s.restart(p)
		inventory.Reset(p.bank)
		return nil
	}

	if !p.round.Configured {
		return gameerr.ErrRoundNotConfigured
	}

	if p.round.Status == models.SummitStatusRoundFinished {
		return fmt.Errorf("%w: round is finished", gameerr.ErrInvalidStatus)
	}

	switch c := cmd.(type) {
	case *SelectTeam:
		return selectTeam(p, c)
	case *SelectPackage:
		return s.selectPackage(p, c)
	case *PlaceWager:
		return placeWager(p, c)
	case *OpenQuestion:
		return openQuestion(p)
	case *SubmitAnswer:
		return submitAnswer(p, c)
	case *EndAnswering:
		if p.round.Status != models.SummitStatusQuestionOpen {
			return gameerr.ErrNotOpen
		}
		timer.Stop(&p.round.Timer)
		p.round.Status = models.SummitStatusWaitingJudgment
		return nil
	case *MarkAnswer:
		return s.markAnswer(p, c)
	case *PressBuzzer:
		return s.pressBuzzer(p, c)
	case *RevealAnswer:
		return revealAnswer(p)
	case *NextQuestion:
		return nextQuestion(p)
	case *SetStatus:
		return setStatus(p, c)
	default:
		return fmt.Errorf("%w: unknown summit command %T", gameerr.ErrInvalidInput, cmd)
	}
}

func (s *service) setConfig(p *play, c *SetConfig) error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("%w: the bank needs questions", gameerr.ErrInvalidInput)
	}

	bank := &models.QuestionBank{Items: make([]*models.QuestionBankItem, 0, len(c.Questions))}
	for _, q := range c.Questions {
		if q.ID == "" {
			q.ID = s.uuid.NewUUID()
		}
		q.Order = 0
		bank.Items = append(bank.Items, &models.QuestionBankItem{Question: q})
	}

	if err := inventory.Validate(bank); err != nil {
		return err
	}

	*p.bank = *bank
	s.restart(p)
	p.round.Configured = true

	return nil
}

// restart returns to team selection and drops every package assignment
func (s *service) restart(p *play) {
	configured := p.round.Configured
	*p.round = *newRound()
	p.round.Configured = configured
	p.round.TeamsToFinish = s.teamsToFinish
	registry.ClearSummit(p.teams)
}

// clearQuestion drops everything tied to the current question
func clearQuestion(r *models.SummitRound) {
	r.Answers = []models.TeamAnswer{}
	r.WagerTeamIDs = nil
	r.PrimaryJudged = false
	r.PrimaryStealPenalty = false
	r.Resolved = false
	timer.Stop(&r.Timer)
	buzzer.Clear(&r.Buzzer)
}

func owns(r *models.SummitRound, team *models.Team) bool {
	if team.AssignedPackage != nil {
		return true
	}
	for _, id := range r.CompletedTeamIDs {
		if id == team.ID {
			return true
		}
	}
	return false
}

func selectTeam(p *play, c *SelectTeam) error {
	if p.round.Status != models.SummitStatusTeamSelection {
		return fmt.Errorf("%w: a team is already playing", gameerr.ErrInvalidStatus)
	}

	team, err := registry.RequireTeam(p.teams, c.TeamID)
	if err != nil {
		return err
	}

	if owns(p.round, team) {
		return fmt.Errorf("%w: team %s", gameerr.ErrPackageAlreadyOwned, team.ID)
	}

	p.round.PrimaryTeamID = team.ID
	p.round.Status = models.SummitStatusPackageSelection

	return nil
}

func (s *service) selectPackage(p *play, c *SelectPackage) error {
	if p.round.Status != models.SummitStatusPackageSelection {
		return fmt.Errorf("%w: select a team first", gameerr.ErrInvalidStatus)
	}

	if !c.PackageType.Valid() {
		return fmt.Errorf("%w: package type %d", gameerr.ErrInvalidInput, c.PackageType)
	}

	team, err := registry.RequireTeam(p.teams, p.round.PrimaryTeamID)
	if err != nil {
		return err
	}

	pkg, err := inventory.AssemblePackage(p.bank, s.picker, c.PackageType, team.ID)
	if err != nil {
		return err
	}

	pkgType := c.PackageType
	order := len(p.round.CompletedTeamIDs) + 1
	team.AssignedPackage = &pkgType
	team.PackageOrder = &order

	p.round.Package = pkg
	p.round.QuestionIndex = 0
	clearQuestion(p.round)
	p.round.Status = models.SummitStatusQuestionPreparing

	return nil
}

func placeWager(p *play, c *PlaceWager) error {
	if p.round.Status != models.SummitStatusQuestionPreparing {
		return fmt.Errorf("%w: wagers close when the question opens", gameerr.ErrInvalidStatus)
	}

	team, err := registry.RequireTeam(p.teams, c.TeamID)
	if err != nil {
		return err
	}

	if team.HasWagered {
		return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyWagered, team.ID)
	}

	team.HasWagered = true
	p.round.WagerTeamIDs = append(p.round.WagerTeamIDs, team.ID)

	return nil
}

func openQuestion(p *play) error {
	if p.round.Status != models.SummitStatusQuestionPreparing {
		return fmt.Errorf("%w: no question is being prepared", gameerr.ErrInvalidStatus)
	}

	q := p.round.CurrentQuestion()
	if q == nil {
		return gameerr.ErrQuestionNotFound
	}

	seconds := q.TimeLimitSeconds
	if seconds <= 0 {
		seconds = questionSeconds(q.PointValue)
	}

	timer.Start(&p.round.Timer, p.now, seconds)
	p.round.Status = models.SummitStatusQuestionOpen

	return nil
}

func submitAnswer(p *play, c *SubmitAnswer) error {
	team, err := registry.RequireTeam(p.teams, c.TeamID)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(c.Answer)
	if text == "" {
		return fmt.Errorf("%w: answer is required", gameerr.ErrInvalidInput)
	}

	name := c.TeamName
	if name == "" {
		name = team.Name
	}

	answer := models.TeamAnswer{
		TeamID:                team.ID,
		TeamName:              name,
		AnswerText:            text,
		SubmittedAt:           p.now,
		ClientTimestampMillis: c.ClientTimestampMillis,
	}

	switch p.round.Status {
	case models.SummitStatusQuestionOpen:
		if team.ID != p.round.PrimaryTeamID {
			return fmt.Errorf("%w: only the primary team answers now", gameerr.ErrNotYourTurn)
		}
		if timer.Expired(p.round.Timer, p.now) {
			return gameerr.ErrNotOpen
		}

		answer.Role = models.AnswerRolePrimary
		if i := models.FindAnswer(p.round.Answers, team.ID); i >= 0 {
			p.round.Answers[i] = answer
		} else {
			p.round.Answers = append(p.round.Answers, answer)
		}
		return nil

	case models.SummitStatusBuzzerWindow:
		head := buzzer.Winner(&p.round.Buzzer)
		if head == nil || head.TeamID != team.ID {
			return fmt.Errorf("%w: team %s does not hold the buzzer", gameerr.ErrNotYourTurn, team.ID)
		}
		if models.FindAnswer(p.round.Answers, team.ID) >= 0 {
			return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyAnswered, team.ID)
		}

		answer.Role = models.AnswerRoleChallenger
		p.round.Answers = append(p.round.Answers, answer)
		buzzer.Close(&p.round.Buzzer)
		p.round.Status = models.SummitStatusWaitingJudgment
		return nil

	default:
		return gameerr.ErrNotOpen
	}
}

func (s *service) pressBuzzer(p *play, c *PressBuzzer) error {
	if p.round.Status != models.SummitStatusBuzzerWindow {
		return gameerr.ErrWindowClosed
	}

	team, err := registry.RequireTeam(p.teams, c.TeamID)
	if err != nil {
		return err
	}

	name := c.TeamName
	if name == "" {
		name = team.Name
	}

	_, err = buzzer.Press(&p.round.Buzzer, p.now, buzzer.PressInput{
		PressID:               s.uuid.NewUUID(),
		TeamID:                team.ID,
		TeamName:              name,
		ClientTimestampMillis: c.ClientTimestampMillis,
	})
	return err
}

// pendingChallenger returns the index of the ungraded steal answer or -1
func pendingChallenger(r *models.SummitRound) int {
	for i := range r.Answers {
		if r.Answers[i].Role == models.AnswerRoleChallenger && !r.Answers[i].Graded() {
			return i
		}
	}
	return -1
}

func (s *service) markAnswer(p *play, c *MarkAnswer) error {
	if c.Correct == nil {
		return fmt.Errorf("%w: correct is required", gameerr.ErrInvalidInput)
	}

	r := p.round

	if c.TeamID != "" {
		if c.TeamID == r.PrimaryTeamID && r.PrimaryJudged {
			return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyJudged, c.TeamID)
		}
		if i := models.FindAnswer(r.Answers, c.TeamID); i >= 0 && r.Answers[i].Graded() {
			return fmt.Errorf("%w: team %s", gameerr.ErrAlreadyJudged, c.TeamID)
		}
	}

	q := r.CurrentQuestion()
	if q == nil {
		return fmt.Errorf("%w: no question in play", gameerr.ErrNothingToJudge)
	}

	switch {
	case !r.PrimaryJudged && (r.Status == models.SummitStatusQuestionOpen || r.Status == models.SummitStatusWaitingJudgment):
		if c.TeamID != "" && c.TeamID != r.PrimaryTeamID {
			return fmt.Errorf("%w: the primary team's answer is pending", gameerr.ErrNothingToJudge)
		}
		return s.judgePrimary(p, q, *c.Correct)

	case r.PrimaryJudged && r.Status == models.SummitStatusWaitingJudgment:
		i := pendingChallenger(r)
		if i < 0 {
			return fmt.Errorf("%w: no steal answer is pending", gameerr.ErrNothingToJudge)
		}
		if c.TeamID != "" && c.TeamID != r.Answers[i].TeamID {
			return fmt.Errorf("%w: team %s has no pending answer", gameerr.ErrNothingToJudge, c.TeamID)
		}
		return judgeChallenger(p, q, i, *c.Correct)

	default:
		return fmt.Errorf("%w: nothing awaits judgment in %s", gameerr.ErrNothingToJudge, r.Status)
	}
}

func (s *service) judgePrimary(p *play, q *models.Question, correct bool) error {
	r := p.round
	i := models.FindAnswer(r.Answers, r.PrimaryTeamID)
	if i < 0 && correct {
		return fmt.Errorf("%w: the primary team has not answered", gameerr.ErrNothingToJudge)
	}

	points := scoring.SummitPrimary(q.PointValue, correct, r.Wagered(r.PrimaryTeamID))
	if i >= 0 {
		r.Answers[i].IsCorrect = &correct
		r.Answers[i].PointsAwarded = points
	}

	r.PrimaryJudged = true
	timer.Stop(&r.Timer)

	if correct {
		p.award(r.PrimaryTeamID, points, scoring.ReasonSummitCorrect)
		r.Resolved = true
		r.Status = models.SummitStatusAnswerRevealed
		return nil
	}

	if points != 0 {
		p.award(r.PrimaryTeamID, points, scoring.ReasonSummitWrongWager)
	}

	buzzer.Open(&r.Buzzer, p.now, s.buzzerSeconds, r.PrimaryTeamID)
	r.Status = models.SummitStatusBuzzerWindow

	return nil
}

func judgeChallenger(p *play, q *models.Question, i int, correct bool) error {
	r := p.round
	a := &r.Answers[i]

	points := scoring.SummitChallenger(q.PointValue, correct)
	a.IsCorrect = &correct
	a.PointsAwarded = points

	if correct {
		p.award(a.TeamID, points, scoring.ReasonStealCorrect)
		if !r.PrimaryStealPenalty {
			p.award(r.PrimaryTeamID, scoring.SummitStolen(q.PointValue), scoring.ReasonStolenFrom)
			r.PrimaryStealPenalty = true
		}
		r.Resolved = true
		buzzer.Close(&r.Buzzer)
		r.Status = models.SummitStatusAnswerRevealed
		return nil
	}

	p.award(a.TeamID, points, scoring.ReasonStealWrong)
	if _, err := buzzer.DisqualifyWinner(&r.Buzzer); err != nil {
		return err
	}
	r.Buzzer.Open = true
	r.Status = models.SummitStatusBuzzerWindow

	return nil
}

func revealAnswer(p *play) error {
	r := p.round
	switch {
	case r.Status == models.SummitStatusBuzzerWindow:
	case r.Status == models.SummitStatusWaitingJudgment && r.PrimaryJudged && pendingChallenger(r) < 0:
	default:
		return fmt.Errorf("%w: cannot reveal in %s", gameerr.ErrInvalidStatus, r.Status)
	}

	buzzer.Close(&r.Buzzer)
	timer.Stop(&r.Timer)
	r.Status = models.SummitStatusAnswerRevealed

	return nil
}

func nextQuestion(p *play) error {
	r := p.round
	if r.Status != models.SummitStatusAnswerRevealed {
		return fmt.Errorf("%w: reveal the answer first", gameerr.ErrInvalidStatus)
	}

	clearQuestion(r)
	r.QuestionIndex++
	if r.Package != nil && r.QuestionIndex < len(r.Package.Questions) {
		r.Status = models.SummitStatusQuestionPreparing
		return nil
	}

	r.CompletedTeamIDs = append(r.CompletedTeamIDs, r.PrimaryTeamID)
	r.PrimaryTeamID = ""
	r.Package = nil
	r.QuestionIndex = 0

	finish := r.TeamsToFinish
	if n := len(p.teams.Teams); n < finish {
		finish = n
	}

	if len(r.CompletedTeamIDs) >= finish {
		r.Status = models.SummitStatusRoundFinished
		return nil
	}

	r.Status = models.SummitStatusTeamSelection
	return nil
}

// setStatus supports two step-backs: un-choosing the primary team before
// a package is drawn, and pulling an unanswered question back to preparing
func setStatus(p *play, c *SetStatus) error {
	r := p.round
	switch {
	case c.Status == models.SummitStatusTeamSelection && r.Status == models.SummitStatusPackageSelection:
		r.PrimaryTeamID = ""
	case c.Status == models.SummitStatusQuestionPreparing && r.Status == models.SummitStatusQuestionOpen && !r.PrimaryJudged:
		r.Answers = []models.TeamAnswer{}
		timer.Stop(&r.Timer)
	default:
		return fmt.Errorf("%w: cannot go from %s to %s", gameerr.ErrInvalidStatus, r.Status, c.Status)
	}

	r.Status = c.Status
	return nil
}

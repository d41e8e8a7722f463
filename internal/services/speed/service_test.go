package speed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/datkingvn/pvoil-sub000/internal/common/clock/mocks"
	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	commonuuid "github.com/datkingvn/pvoil-sub000/internal/common/uuid"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/events"
	"github.com/datkingvn/pvoil-sub000/internal/services/registry"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SpeedServiceTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mr        *miniredis.Miniredis
	client    *redis.Client
	mockClock *mocks.MockClock
	service   Service
	ctx       context.Context
	showID    string
	start     time.Time
	now       time.Time
}

func (s *SpeedServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.ctrl)
	s.start = time.Date(2024, 5, 1, 20, 30, 0, 0, time.UTC)
	s.now = s.start
	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})

	store, err := document.NewRedis(&document.Config{RedisClient: s.client})
	s.Require().NoError(err)

	bus, err := events.NewRedis(&events.Config{RedisClient: s.client, Clock: s.mockClock})
	s.Require().NoError(err)

	svc, err := New(&Config{
		Store:         store,
		Publisher:     bus,
		Clock:         s.mockClock,
		UUIDGenerator: commonuuid.New(),
	})
	s.Require().NoError(err)
	s.service = svc

	teams, err := registry.New(&registry.Config{Store: store, Publisher: bus, UUIDGenerator: commonuuid.New()})
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.showID = "show-1"

	_, err = teams.SetRoster(s.ctx, &registry.SetRosterInput{
		ShowID: s.showID,
		Teams: []registry.RosterEntry{
			{ID: "t1", Name: "Đội Một"},
			{ID: "t2", Name: "Đội Hai"},
			{ID: "t3", Name: "Đội Ba"},
			{ID: "t4", Name: "Đội Bốn"},
			{ID: "t5", Name: "Đội Năm"},
		},
	})
	s.Require().NoError(err)
}

func (s *SpeedServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestSpeedServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SpeedServiceTestSuite))
}

func (s *SpeedServiceTestSuite) exec(cmd Command) (*StateOutput, error) {
	return s.service.Execute(s.ctx, &ExecuteInput{ShowID: s.showID, Command: cmd})
}

func (s *SpeedServiceTestSuite) mustExec(cmd Command) *StateOutput {
	out, err := s.exec(cmd)
	s.Require().NoError(err, cmd.Name())
	return out
}

func verdict(correct bool) *bool {
	return &correct
}

// concurrently runs every command at once and returns their errors in order
func (s *SpeedServiceTestSuite) concurrently(cmds ...Command) []error {
	errs := make([]error, len(cmds))
	var wg sync.WaitGroup
	for i, cmd := range cmds {
		wg.Add(1)
		go func(i int, cmd Command) {
			defer wg.Done()
			_, errs[i] = s.exec(cmd)
		}(i, cmd)
	}
	wg.Wait()
	return errs
}

func (s *SpeedServiceTestSuite) at(d time.Duration) {
	s.now = s.start.Add(d)
}

func (s *SpeedServiceTestSuite) configure() {
	s.mustExec(&SetConfig{Questions: []models.Question{
		{Text: "Tỉnh có mỏ Bạch Hổ?", AnswerText: "Bà Rịa - Vũng Tàu", AcceptedAnswers: []string{"Vũng Tàu"}},
		{Text: "Sông dài nhất Việt Nam?", AnswerText: "Sông Đồng Nai", TimeLimitSeconds: 10},
	}})
}

func (s *SpeedServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{})
	s.ErrorIs(err, ErrNilStore)
}

func (s *SpeedServiceTestSuite) TestSetConfigValidation() {
	_, err := s.exec(&SetConfig{})
	s.ErrorIs(err, gameerr.ErrInvalidInput)

	_, err = s.exec(&SetConfig{Questions: []models.Question{{Text: "q"}}})
	s.ErrorIs(err, gameerr.ErrInvalidInput)

	_, err = s.exec(&OpenQuestion{})
	s.ErrorIs(err, gameerr.ErrRoundNotConfigured)
}

func (s *SpeedServiceTestSuite) TestOpenQuestionUsesDefaultTime() {
	s.configure()

	out := s.mustExec(&OpenQuestion{})
	s.Equal(models.SpeedStatusQuestionOpen, out.Round.Status)
	s.Equal(30, out.RemainingSeconds)

	s.at(12500 * time.Millisecond)
	state, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.Equal(18, state.RemainingSeconds)
}

func (s *SpeedServiceTestSuite) TestAnswersAreFuzzyGraded() {
	s.configure()
	s.mustExec(&OpenQuestion{})

	out := s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "vung tau"})
	s.True(out.Round.Answers[0].Correct())

	out = s.mustExec(&SubmitAnswer{TeamID: "t2", Answer: "Bà Rịa"})
	s.True(out.Round.Answers[1].Correct())

	out = s.mustExec(&SubmitAnswer{TeamID: "t3", Answer: "Cà Mau"})
	s.False(out.Round.Answers[2].Correct())
	s.True(out.Round.Answers[2].Graded())
}

func (s *SpeedServiceTestSuite) TestAtMostOneAnswerPerTeam() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"})

	_, err := s.exec(&SubmitAnswer{TeamID: "t1", Answer: "Cà Mau"})
	s.ErrorIs(err, gameerr.ErrAlreadyAnswered)

	_, err = s.exec(&SubmitAnswer{TeamID: "ghost", Answer: "x"})
	s.ErrorIs(err, gameerr.ErrTeamNotFound)
}

func (s *SpeedServiceTestSuite) TestLadderWithTieWindow() {
	s.configure()
	s.mustExec(&OpenQuestion{})

	s.at(2000 * time.Millisecond)
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu", ClientTimestampMillis: 99})
	s.at(2300 * time.Millisecond)
	s.mustExec(&SubmitAnswer{TeamID: "t2", Answer: "vũng tàu", ClientTimestampMillis: 1})
	s.at(5000 * time.Millisecond)
	s.mustExec(&SubmitAnswer{TeamID: "t4", Answer: "Hà Nội"})
	s.at(9000 * time.Millisecond)
	s.mustExec(&SubmitAnswer{TeamID: "t3", Answer: "Bà Rịa Vũng Tàu"})

	s.mustExec(&CloseQuestion{})
	out := s.mustExec(&CalculatePoints{})

	s.Equal(35, out.Teams.Find("t1").Score)
	s.Equal(35, out.Teams.Find("t2").Score)
	s.Equal(20, out.Teams.Find("t3").Score)
	s.Equal(0, out.Teams.Find("t4").Score)
	s.True(out.Round.Scored)

	total := 0
	for _, d := range out.Deltas {
		total += d.Points
	}
	s.LessOrEqual(total, 100)
}

func (s *SpeedServiceTestSuite) TestCalculatePointsOnlyOnce() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"})
	s.mustExec(&CloseQuestion{})
	s.mustExec(&CalculatePoints{})

	_, err := s.exec(&CalculatePoints{})
	s.ErrorIs(err, gameerr.ErrAlreadyScored)

	_, err = s.exec(&MarkAnswer{TeamID: "t1", Correct: verdict(false)})
	s.ErrorIs(err, gameerr.ErrAlreadyScored)

	state, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.Equal(40, state.Teams.Find("t1").Score)
}

func (s *SpeedServiceTestSuite) TestCalculatePointsNeedsClosedOrExpired() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"})

	_, err := s.exec(&CalculatePoints{})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)

	s.at(31 * time.Second)
	_, err = s.exec(&SubmitAnswer{TeamID: "t2", Answer: "Vũng Tàu"})
	s.ErrorIs(err, gameerr.ErrNotOpen)

	out := s.mustExec(&CalculatePoints{})
	s.Equal(models.SpeedStatusQuestionClosed, out.Round.Status)
	s.Equal(40, out.Teams.Find("t1").Score)
}

func (s *SpeedServiceTestSuite) TestMarkAnswerOverridesGrade() {
	s.configure()
	s.mustExec(&OpenQuestion{})

	s.at(time.Second)
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vung Tau tinh"})
	s.at(3 * time.Second)
	s.mustExec(&SubmitAnswer{TeamID: "t2", Answer: "BRVT"})

	s.mustExec(&MarkAnswer{TeamID: "t2", Correct: verdict(true)})
	s.mustExec(&MarkAnswer{TeamID: "t1", Correct: verdict(false)})

	_, err := s.exec(&MarkAnswer{TeamID: "t3", Correct: verdict(true)})
	s.ErrorIs(err, gameerr.ErrNothingToJudge)

	s.mustExec(&CloseQuestion{})
	out := s.mustExec(&CalculatePoints{})
	s.Equal(0, out.Teams.Find("t1").Score)
	s.Equal(40, out.Teams.Find("t2").Score)
}

func (s *SpeedServiceTestSuite) TestNextQuestionFinishesRound() {
	s.configure()

	_, err := s.exec(&NextQuestion{})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)

	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"})
	s.mustExec(&CloseQuestion{})

	out := s.mustExec(&NextQuestion{})
	s.Equal(models.SpeedStatusIdle, out.Round.Status)
	s.Equal(1, out.Round.CurrentIndex)
	s.Empty(out.Round.Answers)
	s.False(out.Round.Scored)

	out = s.mustExec(&OpenQuestion{})
	s.Equal(10, out.RemainingSeconds)
	s.mustExec(&CloseQuestion{})

	out = s.mustExec(&NextQuestion{})
	s.Equal(models.SpeedStatusRoundFinished, out.Round.Status)

	_, err = s.exec(&OpenQuestion{})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)
}

func (s *SpeedServiceTestSuite) TestSetStatusAbandonsQuestion() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"})

	_, err := s.exec(&SetStatus{Status: models.SpeedStatusRoundFinished})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)

	out := s.mustExec(&SetStatus{Status: models.SpeedStatusIdle})
	s.Equal(models.SpeedStatusIdle, out.Round.Status)
	s.Equal(0, out.Round.CurrentIndex)
	s.Empty(out.Round.Answers)
}

func (s *SpeedServiceTestSuite) TestResetRewinds() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.mustExec(&CloseQuestion{})
	s.mustExec(&NextQuestion{})

	out := s.mustExec(&Reset{})
	s.Equal(0, out.Round.CurrentIndex)
	s.Equal(models.SpeedStatusIdle, out.Round.Status)
	s.Len(out.Round.Questions, 2)
}

func (s *SpeedServiceTestSuite) TestMarkAnswerNeedsVerdict() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"})

	_, err := s.exec(&MarkAnswer{TeamID: "t1"})
	s.ErrorIs(err, gameerr.ErrInvalidInput)

	state, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.True(state.Round.Answers[0].Correct())
}

func (s *SpeedServiceTestSuite) TestConcurrentSubmissionsScoreOnce() {
	s.configure()
	s.mustExec(&OpenQuestion{})
	s.at(time.Second)

	errs := s.concurrently(
		&SubmitAnswer{TeamID: "t1", Answer: "Vũng Tàu"},
		&SubmitAnswer{TeamID: "t2", Answer: "Vũng Tàu"},
		&SubmitAnswer{TeamID: "t3", Answer: "Vũng Tàu"},
		&SubmitAnswer{TeamID: "t1", Answer: "vung tau"},
	)
	for _, err := range errs {
		if err != nil && !errors.Is(err, gameerr.ErrAlreadyAnswered) && !errors.Is(err, gameerr.ErrConcurrentUpdate) {
			s.Failf("unexpected error", "%v", err)
		}
	}

	state, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.Require().Len(state.Round.Answers, 3)
	seen := map[string]bool{}
	for _, a := range state.Round.Answers {
		s.False(seen[a.TeamID], a.TeamID)
		seen[a.TeamID] = true
	}

	s.mustExec(&CloseQuestion{})
	errs = s.concurrently(&CalculatePoints{}, &CalculatePoints{}, &CalculatePoints{})

	applied := 0
	for _, err := range errs {
		switch {
		case err == nil:
			applied++
		case errors.Is(err, gameerr.ErrAlreadyScored), errors.Is(err, gameerr.ErrConcurrentUpdate):
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, applied)

	state, err = s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)

	total := 0
	for _, a := range state.Round.Answers {
		s.Equal(a.PointsAwarded, state.Teams.Find(a.TeamID).Score, a.TeamID)
		total += state.Teams.Find(a.TeamID).Score
	}
	s.Equal(90, total)
}

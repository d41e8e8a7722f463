package obstacle

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

type ObstacleServiceTestSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mr        *miniredis.Miniredis
	client    *redis.Client
	mockClock *mocks.MockClock
	service   Service
	ctx       context.Context
	showID    string
	now       time.Time
}

func (s *ObstacleServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.ctrl)
	s.now = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
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
		},
	})
	s.Require().NoError(err)
}

func (s *ObstacleServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestObstacleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ObstacleServiceTestSuite))
}

func (s *ObstacleServiceTestSuite) exec(cmd Command) (*StateOutput, error) {
	return s.service.Execute(s.ctx, &ExecuteInput{ShowID: s.showID, Command: cmd})
}

func (s *ObstacleServiceTestSuite) mustExec(cmd Command) *StateOutput {
	out, err := s.exec(cmd)
	s.Require().NoError(err, cmd.Name())
	return out
}

func verdict(correct bool) *bool {
	return &correct
}

// concurrently runs every command at once and returns their errors in order
func (s *ObstacleServiceTestSuite) concurrently(cmds ...Command) []error {
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

func (s *ObstacleServiceTestSuite) configure() {
	s.mustExec(&SetConfig{
		Keyword: "Dầu khí",
		Questions: []models.Question{
			{Text: "Nhà máy lọc dầu đầu tiên?", AnswerText: "Dung Quất"},
			{Text: "Cảng nước sâu ở Hà Tĩnh?", AnswerText: "Vũng Áng"},
			{Text: "Mỏ dầu lớn nhất?", AnswerText: "Bạch Hổ", PointValue: 20},
			{Text: "Thủ đô?", AnswerText: "Hà Nội"},
		},
	})
}

func (s *ObstacleServiceTestSuite) revealTile(index int, teamID string) {
	s.mustExec(&SelectTile{TeamID: teamID, TileIndex: index})
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: teamID, Answer: "x"})
	s.mustExec(&MarkAnswer{TeamID: teamID, Correct: verdict(true)})
}

func (s *ObstacleServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{})
	s.ErrorIs(err, ErrNilStore)
}

func (s *ObstacleServiceTestSuite) TestCommandsNeedConfig() {
	_, err := s.exec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.ErrorIs(err, gameerr.ErrRoundNotConfigured)
}

func (s *ObstacleServiceTestSuite) TestSetConfigValidation() {
	_, err := s.exec(&SetConfig{Keyword: "k", Questions: []models.Question{{Text: "q", AnswerText: "a"}}})
	s.ErrorIs(err, gameerr.ErrInvalidInput)

	_, err = s.exec(&SetConfig{Keyword: " ", Questions: make([]models.Question, 4)})
	s.ErrorIs(err, gameerr.ErrInvalidInput)
}

func (s *ObstacleServiceTestSuite) TestSetConfigDefaults() {
	s.configure()

	out, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)
	s.Require().Len(out.Round.Tiles, 4)
	s.Equal(10, out.Round.Tiles[0].Question.PointValue)
	s.Equal(20, out.Round.Tiles[2].Question.PointValue)
	s.NotEmpty(out.Round.Tiles[0].Question.ID)
	s.True(out.Round.Buzzer.Open)
}

func (s *ObstacleServiceTestSuite) TestCorrectTileAnswerRevealsTile() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 1})
	out := s.mustExec(&OpenQuestion{})
	s.Equal(models.ObstacleStatusQuestionOpen, out.Round.Status)
	s.Equal(15, out.RemainingSeconds)

	s.now = s.now.Add(4 * time.Second)
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Áng"})
	out = s.mustExec(&MarkAnswer{TeamID: "t1", Correct: verdict(true)})

	s.Equal(models.TileStatusRevealed, out.Round.Tiles[1].Status)
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)
	s.Nil(out.Round.ActiveTile)
	s.Equal(10, out.Teams.Find("t1").Score)
	s.Equal([]models.ScoreDelta{{TeamID: "t1", Points: 10, Reason: "tile_answer"}}, out.Deltas)
}

func (s *ObstacleServiceTestSuite) TestWaitsForEveryAnswerToBeGraded() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 2})
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Bạch Hổ"})
	s.mustExec(&SubmitAnswer{TeamID: "t2", Answer: "Rồng"})

	out := s.mustExec(&MarkAnswer{TeamID: "t1", Correct: verdict(true)})
	s.Equal(models.ObstacleStatusQuestionOpen, out.Round.Status)
	s.Equal(20, out.Teams.Find("t1").Score)

	_, err := s.exec(&MarkAnswer{TeamID: "t1", Correct: verdict(false)})
	s.ErrorIs(err, gameerr.ErrAlreadyJudged)

	out = s.mustExec(&MarkAnswer{TeamID: "t2", Correct: verdict(false)})
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)
	s.Equal(models.TileStatusRevealed, out.Round.Tiles[2].Status)
	s.Equal(0, out.Teams.Find("t2").Score)
}

func (s *ObstacleServiceTestSuite) TestAllWrongMarksTileWrong() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Nghi Sơn"})
	out := s.mustExec(&MarkAnswer{TeamID: "t1", Correct: verdict(false)})

	s.Equal(models.TileStatusWrong, out.Round.Tiles[0].Status)
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)

	_, err := s.exec(&SelectTile{TeamID: "t2", TileIndex: 0})
	s.ErrorIs(err, gameerr.ErrTileUnavailable)
}

func (s *ObstacleServiceTestSuite) TestCloseTileWithoutAnswers() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 3})
	s.mustExec(&OpenQuestion{})
	s.now = s.now.Add(16 * time.Second)

	_, err := s.exec(&SubmitAnswer{TeamID: "t2", Answer: "Hà Nội"})
	s.ErrorIs(err, gameerr.ErrNotOpen)

	out := s.mustExec(&CloseTile{})
	s.Equal(models.TileStatusWrong, out.Round.Tiles[3].Status)
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)
}

func (s *ObstacleServiceTestSuite) TestCloseAnswersRejectsLateSubmissions() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "a"})
	s.mustExec(&CloseAnswers{})

	_, err := s.exec(&SubmitAnswer{TeamID: "t2", Answer: "b"})
	s.ErrorIs(err, gameerr.ErrNotOpen)

	_, err = s.exec(&CloseTile{})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)
}

func (s *ObstacleServiceTestSuite) TestDuplicateAnswerRejected() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "a"})

	_, err := s.exec(&SubmitAnswer{TeamID: "t1", Answer: "b"})
	s.ErrorIs(err, gameerr.ErrAlreadyAnswered)
}

func (s *ObstacleServiceTestSuite) TestSelectTileRequiresIdle() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	_, err := s.exec(&SelectTile{TeamID: "t2", TileIndex: 1})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)

	_, err = s.exec(&OpenQuestion{})
	s.NoError(err)
	_, err = s.exec(&OpenQuestion{})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)
}

func (s *ObstacleServiceTestSuite) TestKeywordPointsByRevealedTiles() {
	cases := []struct {
		revealed int
		points   int
	}{
		{0, 80},
		{1, 80},
		{2, 60},
		{3, 40},
	}

	for _, tc := range cases {
		s.configure()
		for i := 0; i < tc.revealed; i++ {
			s.revealTile(i, "t1")
		}

		before, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
		s.Require().NoError(err)

		s.mustExec(&PressBuzzer{TeamID: "t2", ClientTimestampMillis: 1})
		out := s.mustExec(&JudgeKeyword{Correct: verdict(true)})

		s.Equal(tc.points, out.Round.KeywordPointsAwarded, "revealed %d", tc.revealed)
		s.Equal(before.Teams.Find("t2").Score+tc.points, out.Teams.Find("t2").Score)
		s.Equal(models.ObstacleStatusRoundFinished, out.Round.Status)
		s.Equal(4, out.Round.RevealedCount())
	}
}

func (s *ObstacleServiceTestSuite) TestWrongKeywordLocksTeam() {
	s.configure()

	s.mustExec(&PressBuzzer{TeamID: "t2"})
	s.mustExec(&PressBuzzer{TeamID: "t3"})

	out := s.mustExec(&JudgeKeyword{TeamID: "t2", Correct: verdict(false)})
	s.True(out.Round.Locked("t2"))
	s.Equal("t3", out.Round.Buzzer.Presses[0].TeamID)

	_, err := s.exec(&PressBuzzer{TeamID: "t2"})
	s.ErrorIs(err, gameerr.ErrTeamLocked)

	_, err = s.exec(&SelectTile{TeamID: "t2", TileIndex: 0})
	s.ErrorIs(err, gameerr.ErrTeamLocked)

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.mustExec(&OpenQuestion{})
	_, err = s.exec(&SubmitAnswer{TeamID: "t2", Answer: "a"})
	s.ErrorIs(err, gameerr.ErrTeamLocked)
}

func (s *ObstacleServiceTestSuite) TestJudgeKeywordChecksQueueHead() {
	s.configure()

	_, err := s.exec(&JudgeKeyword{Correct: verdict(true)})
	s.ErrorIs(err, gameerr.ErrNothingToJudge)

	s.mustExec(&PressBuzzer{TeamID: "t1"})
	s.mustExec(&PressBuzzer{TeamID: "t2"})

	_, err = s.exec(&JudgeKeyword{TeamID: "t2", Correct: verdict(true)})
	s.ErrorIs(err, gameerr.ErrNothingToJudge)

	_, err = s.exec(&PressBuzzer{TeamID: "t1"})
	s.ErrorIs(err, gameerr.ErrAlreadyPressed)
}

func (s *ObstacleServiceTestSuite) TestFinishedRoundRejectsCommands() {
	s.configure()

	s.mustExec(&PressBuzzer{TeamID: "t1"})
	s.mustExec(&JudgeKeyword{Correct: verdict(true)})

	_, err := s.exec(&PressBuzzer{TeamID: "t2"})
	s.ErrorIs(err, gameerr.ErrWindowClosed)

	_, err = s.exec(&SelectTile{TeamID: "t2", TileIndex: 0})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)
}

func (s *ObstacleServiceTestSuite) TestSetStatusAbandonsTile() {
	s.configure()

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.mustExec(&OpenQuestion{})

	_, err := s.exec(&SetStatus{Status: models.ObstacleStatusRoundFinished})
	s.ErrorIs(err, gameerr.ErrInvalidStatus)

	out := s.mustExec(&SetStatus{Status: models.ObstacleStatusIdle})
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)
	s.Equal(models.TileStatusHidden, out.Round.Tiles[0].Status)
}

func (s *ObstacleServiceTestSuite) TestResetRestoresRound() {
	s.configure()

	s.revealTile(0, "t1")
	s.mustExec(&PressBuzzer{TeamID: "t2"})
	s.mustExec(&JudgeKeyword{Correct: verdict(false)})

	out := s.mustExec(&Reset{})
	s.Equal(models.ObstacleStatusIdle, out.Round.Status)
	s.Equal(0, out.Round.RevealedCount())
	s.False(out.Round.Locked("t2"))
	s.Empty(out.Round.LockedTeamIDs)
	s.Empty(out.Round.Buzzer.Presses)
	s.Equal("Dầu khí", out.Round.Keyword)
	s.Equal(10, out.Teams.Find("t1").Score)
}

func (s *ObstacleServiceTestSuite) TestExecutePublishesEvent() {
	s.configure()

	sub := s.client.Subscribe(s.ctx, "show:"+s.showID+":events")
	defer sub.Close()
	_, err := sub.Receive(s.ctx)
	s.Require().NoError(err)

	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})

	msg, err := sub.ReceiveMessage(s.ctx)
	s.Require().NoError(err)
	s.Contains(msg.Payload, `"action":"selectTile"`)
	s.Contains(msg.Payload, `"round":"obstacle"`)
}

func (s *ObstacleServiceTestSuite) TestMarkAnswerNeedsVerdict() {
	s.configure()
	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 1})
	s.mustExec(&OpenQuestion{})
	s.mustExec(&SubmitAnswer{TeamID: "t1", Answer: "Vũng Áng"})

	_, err := s.exec(&MarkAnswer{TeamID: "t1"})
	s.ErrorIs(err, gameerr.ErrInvalidInput)

	out, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.False(out.Round.Answers[0].Graded())
	s.Equal(models.TileStatusHidden, out.Round.Tiles[1].Status)
	s.Equal(models.ObstacleStatusQuestionOpen, out.Round.Status)
}

func (s *ObstacleServiceTestSuite) TestJudgeKeywordNeedsVerdict() {
	s.configure()
	s.mustExec(&PressBuzzer{TeamID: "t2"})

	_, err := s.exec(&JudgeKeyword{TeamID: "t2"})
	s.ErrorIs(err, gameerr.ErrInvalidInput)

	out, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.False(out.Round.Locked("t2"))
	s.Require().Len(out.Round.Buzzer.Presses, 1)
	s.Equal("t2", out.Round.Buzzer.Presses[0].TeamID)
}

func (s *ObstacleServiceTestSuite) TestConcurrentPressesQueueOnce() {
	s.configure()

	errs := s.concurrently(
		&PressBuzzer{TeamID: "t1"},
		&PressBuzzer{TeamID: "t2"},
		&PressBuzzer{TeamID: "t3"},
		&PressBuzzer{TeamID: "t1"},
		&PressBuzzer{TeamID: "t2"},
	)

	accepted := map[string]int{}
	for i, err := range errs {
		teamID := []string{"t1", "t2", "t3", "t1", "t2"}[i]
		switch {
		case err == nil:
			accepted[teamID]++
		case errors.Is(err, gameerr.ErrAlreadyPressed), errors.Is(err, gameerr.ErrConcurrentUpdate):
		default:
			s.Failf("unexpected error", "%s: %v", teamID, err)
		}
	}

	out, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)

	queued := map[string]int{}
	for _, p := range out.Round.Buzzer.Presses {
		queued[p.TeamID]++
	}
	s.Equal(accepted, queued)
	for teamID, n := range queued {
		s.Equal(1, n, teamID)
	}
}

func (s *ObstacleServiceTestSuite) TestConcurrentAnswersAndJudgmentsApplyOnce() {
	s.configure()
	s.mustExec(&SelectTile{TeamID: "t1", TileIndex: 0})
	s.mustExec(&OpenQuestion{})

	errs := s.concurrently(
		&SubmitAnswer{TeamID: "t1", Answer: "Dung Quất"},
		&SubmitAnswer{TeamID: "t2", Answer: "Dung Quat"},
		&SubmitAnswer{TeamID: "t1", Answer: "khác"},
		&SubmitAnswer{TeamID: "t2", Answer: "khác"},
	)

	submitted := map[string]int{}
	for i, err := range errs {
		teamID := []string{"t1", "t2", "t1", "t2"}[i]
		switch {
		case err == nil:
			submitted[teamID]++
		case errors.Is(err, gameerr.ErrAlreadyAnswered), errors.Is(err, gameerr.ErrConcurrentUpdate):
		default:
			s.Failf("unexpected error", "%s: %v", teamID, err)
		}
	}

	out, err := s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	answered := map[string]int{}
	for _, a := range out.Round.Answers {
		answered[a.TeamID]++
	}
	s.Equal(submitted, answered)
	s.Require().Equal(1, answered["t1"])
	s.Require().Equal(1, answered["t2"])

	errs = s.concurrently(
		&MarkAnswer{TeamID: "t1", Correct: verdict(true)},
		&MarkAnswer{TeamID: "t1", Correct: verdict(true)},
		&MarkAnswer{TeamID: "t1", Correct: verdict(true)},
	)

	applied := 0
	for _, err := range errs {
		switch {
		case err == nil:
			applied++
		case errors.Is(err, gameerr.ErrAlreadyJudged), errors.Is(err, gameerr.ErrConcurrentUpdate):
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, applied)

	out, err = s.service.GetState(s.ctx, &GetStateInput{ShowID: s.showID})
	s.Require().NoError(err)
	s.Equal(10, out.Teams.Find("t1").Score)
	s.Equal(models.TileStatusRevealed, out.Round.Tiles[0].Status)
}

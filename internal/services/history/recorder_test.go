package history

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/storage/memory"
	"github.com/mcoot/arenagame-go/internal/testutil"
)

type RecorderSuite struct {
	suite.Suite
	store    *memory.Storage
	recorder *Recorder
	ctx      context.Context
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.store = memory.New()
	s.recorder = NewRecorder(s.store, 4, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *RecorderSuite) TearDownTest() {
	s.recorder.Close()
}

func match(id string, winner string) model.MatchResult {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return model.MatchResult{
		ID:             model.MatchID(id),
		RoomID:         "ROOM01",
		WinnerID:       model.PlayerID(winner),
		WinnerUsername: winner,
		Participants: []model.MatchParticipant{
			{PlayerID: "alice", Username: "alice", Kills: 1},
			{PlayerID: "bob", Username: "bob", Died: true},
		},
		StartedAt:  at,
		FinishedAt: at.Add(time.Minute),
	}
}

func (s *RecorderSuite) TestRecordPersistsMatchAndStats() {
	s.recorder.Start()
	s.recorder.Record(match("m-1", "alice"))

	s.Eventually(func() bool {
		_, err := s.recorder.GetMatch(s.ctx, "m-1")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Eventually(func() bool {
		stats, err := s.recorder.PlayerStats(s.ctx, "bob")
		return err == nil && stats.Deaths == 1
	}, time.Second, 5*time.Millisecond)

	alice, err := s.recorder.PlayerStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, alice.Wins)
	s.Equal(1, alice.Kills)
	s.Equal(1, alice.MatchesPlayed)
}

func (s *RecorderSuite) TestDrawCountsNoWins() {
	s.recorder.Start()
	s.recorder.Record(match("m-1", ""))
	s.recorder.Close()

	alice, err := s.recorder.PlayerStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, alice.Wins)
}

func (s *RecorderSuite) TestCloseFlushesQueue() {
	s.recorder.Record(match("m-1", "alice"))
	s.recorder.Record(match("m-2", "bob"))

	s.recorder.Start()
	s.recorder.Close()

	matches, err := s.recorder.ListMatches(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(matches, 2)
}

func (s *RecorderSuite) TestFullQueueDrops() {
	logger, logs := testutil.CaptureLogger()
	s.recorder = NewRecorder(s.store, 4, logger)

	for i := range 6 {
		s.recorder.Record(match(string(rune('a'+i)), "alice"))
	}

	s.recorder.Start()
	s.recorder.Close()

	matches, err := s.recorder.ListMatches(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(matches, 4)
	s.Equal([]string{"history queue full, dropping match", "history queue full, dropping match"},
		logs.Messages(slog.LevelWarn))
}

package room

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arenagame-go/internal/dependencies/mocks"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
	"github.com/mcoot/arenagame-go/internal/services/projectile"
)

type RoomSuite struct {
	suite.Suite
	clock *mocks.MockClock
	ids   *mocks.MockIDGenerator
	deps  Deps
}

func TestRoomSuite(t *testing.T) {
	suite.Run(t, new(RoomSuite))
}

func (s *RoomSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDGenerator("id")
	cfg := model.DefaultGameConfig()
	s.deps = Deps{
		Config:      cfg,
		Grace:       10 * time.Second,
		Projectiles: projectile.New(s.ids, cfg),
		Clock:       s.clock,
		Random:      mocks.NewMockRandom(),
		IDs:         s.ids,
	}
}

func (s *RoomSuite) newRoom(players ...string) *Room {
	r := New("ROOM01", model.PlayerID(players[0]), players[0], s.deps)
	for _, p := range players[1:] {
		_, err := r.Join(model.PlayerID(p), p, nil)
		s.Require().NoError(err)
	}
	return r
}

// place moves a player to a fixed point, stepping the clock past the
// update interval first
func (s *RoomSuite) place(r *Room, id string, x, y float64) {
	s.clock.Advance(time.Second)
	_, err := r.Move(model.PlayerID(id), physics.Vec(x, y), 0)
	s.Require().NoError(err)
}

func (s *RoomSuite) lethal() {
	s.deps.Config.Damage = 100
	s.deps.Projectiles = projectile.New(s.ids, s.deps.Config)
}

// Creation and joining

func (s *RoomSuite) TestNewSeatsCreator() {
	r := s.newRoom("alice")

	sum := r.Summary()
	s.Equal(model.RoomStatusWaiting, sum.Status)
	s.Equal(model.PlayerID("alice"), sum.CreatorID)
	s.Require().Len(sum.Players, 1)
	s.True(sum.Players[0].IsCreator)
	s.Equal(100, sum.Players[0].Health)
	s.True(r.OwnedBy("alice"))
}

func (s *RoomSuite) TestJoinAddsPlayer() {
	r := s.newRoom("alice")

	res, err := r.Join("bob", "bob", nil)
	s.Require().NoError(err)
	s.False(res.Player.IsCreator)
	s.Len(res.Players, 2)
	s.False(res.CreatorChanged)
	s.False(res.Reconnected)
}

func (s *RoomSuite) TestJoinRejectsTakenUsername() {
	r := s.newRoom("alice")

	_, err := r.Join("conn-2", "alice", nil)
	s.ErrorIs(err, model.ErrUsernameTaken)
	s.ErrorIs(err, model.ErrConflict)
}

func (s *RoomSuite) TestJoinRejectsPlayingRoom() {
	r := s.newRoom("alice", "bob")
	_, err := r.Start("alice")
	s.Require().NoError(err)

	_, err = r.Join("carol", "carol", nil)
	s.ErrorIs(err, model.ErrGameInProgress)
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *RoomSuite) TestJoinFinishedRoomIsAllowed() {
	s.lethal()
	r := s.newRoom("alice", "bob")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(290, 300), 0)
	s.Require().NotNil(r.Step().GameOver)

	_, err := r.Join("carol", "carol", nil)
	s.NoError(err)
}

// Leaving and creator migration

func (s *RoomSuite) TestCreatorLeaveMigratesToEarliestJoined() {
	r := s.newRoom("alice", "bob", "carol")

	res, err := r.Leave("alice")
	s.Require().NoError(err)
	s.True(res.WasCreator)
	s.Require().NotNil(res.NewCreator)
	s.Equal(model.PlayerID("bob"), res.NewCreator.ID)
	s.True(res.NewCreator.IsCreator)

	sum := r.Summary()
	s.Equal(model.PlayerID("bob"), sum.CreatorID)
	s.Equal(1, countCreators(sum.Players))
}

func (s *RoomSuite) TestMemberLeaveKeepsCreator() {
	r := s.newRoom("alice", "bob")

	res, err := r.Leave("bob")
	s.Require().NoError(err)
	s.False(res.WasCreator)
	s.Nil(res.NewCreator)
	s.Equal(model.PlayerID("alice"), r.Summary().CreatorID)
}

func (s *RoomSuite) TestLastLeaveEmptiesRoom() {
	r := s.newRoom("alice")

	_, err := r.Leave("alice")
	s.Require().NoError(err)
	s.Equal(0, r.PlayerCount())
	s.Empty(r.Summary().CreatorID)

	res, err := r.Join("bob", "bob", nil)
	s.Require().NoError(err)
	s.True(res.Player.IsCreator, "first player into an empty room becomes creator")
}

func (s *RoomSuite) TestLeaveUnknownPlayer() {
	r := s.newRoom("alice")
	_, err := r.Leave("ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Reconnection

func (s *RoomSuite) TestReconnectRestoresCreator() {
	r := s.newRoom("alice", "bob")
	_, _ = r.Leave("alice")
	s.Equal(model.PlayerID("bob"), r.Summary().CreatorID)

	rec := &model.DisconnectRecord{Username: "alice", RoomID: r.ID(), WasCreator: true}
	res, err := r.Join("alice-2", "alice", rec)
	s.Require().NoError(err)
	s.True(res.Reconnected)
	s.True(res.CreatorChanged)
	s.True(res.Player.IsCreator)
	s.Equal(model.PlayerID("alice-2"), res.CreatorID)

	sum := r.Summary()
	s.Equal(model.PlayerID("alice-2"), sum.CreatorID)
	s.False(sum.GetPlayer("bob").IsCreator)
	s.Equal(1, countCreators(sum.Players))
}

func (s *RoomSuite) TestReconnectIntoGameInProgress() {
	r := s.newRoom("alice", "bob", "carol")
	_, _ = r.Start("alice")
	_, _ = r.Leave("carol")

	rec := &model.DisconnectRecord{Username: "carol", RoomID: r.ID(), Health: 40}
	res, err := r.Join("carol-2", "carol", rec)
	s.Require().NoError(err)
	s.Equal(40, res.Player.Health, "health is restored, not refilled")
	s.False(res.CreatorChanged)
}

func (s *RoomSuite) TestReconnectReplacesStaleSeat() {
	r := s.newRoom("alice", "bob")

	rec := &model.DisconnectRecord{Username: "bob", RoomID: r.ID()}
	_, err := r.Join("bob-2", "bob", rec)
	s.Require().NoError(err)

	sum := r.Summary()
	s.Len(sum.Players, 2)
	s.Nil(sum.GetPlayer("bob"))
	s.NotNil(sum.GetPlayer("bob-2"))
}

func (s *RoomSuite) TestReconnectReplacesStaleCreatorSeat() {
	r := s.newRoom("alice", "bob")

	// alice was not creator when the record was written, so her old
	// seat's role goes to bob rather than to the reconnecting player
	rec := &model.DisconnectRecord{Username: "alice", RoomID: r.ID()}
	res, err := r.Join("alice-2", "alice", rec)
	s.Require().NoError(err)
	s.True(res.CreatorChanged)
	s.Equal(model.PlayerID("bob"), res.CreatorID)
	s.False(res.Player.IsCreator)

	sum := r.Summary()
	s.Equal(model.PlayerID("bob"), sum.CreatorID)
	s.True(sum.GetPlayer("bob").IsCreator)
	s.Equal(1, countCreators(sum.Players))
}

// Starting

func (s *RoomSuite) TestStartRequiresCreator() {
	r := s.newRoom("alice", "bob")

	_, err := r.Start("bob")
	s.ErrorIs(err, model.ErrNotCreator)
	s.Equal(model.RoomStatusWaiting, r.Status())
}

func (s *RoomSuite) TestStartRequiresTwoPlayers() {
	r := s.newRoom("alice")

	_, err := r.Start("alice")
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
	s.Equal(model.RoomStatusWaiting, r.Status())
}

func (s *RoomSuite) TestStartUnknownPlayer() {
	r := s.newRoom("alice", "bob")
	_, err := r.Start("ghost")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *RoomSuite) TestStartTransitionsToPlaying() {
	r := s.newRoom("alice", "bob")
	s.clock.Advance(time.Minute)

	players, err := r.Start("alice")
	s.Require().NoError(err)
	s.Len(players, 2)

	sum := r.Summary()
	s.Equal(model.RoomStatusPlaying, sum.Status)
	s.Equal(s.clock.Now(), sum.StartedAt)

	_, err = r.Start("alice")
	s.ErrorIs(err, model.ErrGameInProgress)
}

// Movement and shooting

func (s *RoomSuite) TestMoveIsRateLimited() {
	r := s.newRoom("alice")

	_, err := r.Move("alice", physics.Vec(50, 50), 0.5)
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Millisecond)
	_, err = r.Move("alice", physics.Vec(50, 50), 0.5)
	s.ErrorIs(err, model.ErrRateLimited)
}

func (s *RoomSuite) TestShootRequiresPlaying() {
	r := s.newRoom("alice", "bob")

	_, err := r.Shoot("alice", physics.Vec(10, 10), 0)
	s.ErrorIs(err, model.ErrGameNotInProgress)
	s.ErrorIs(err, model.ErrInvalidState)
}

func (s *RoomSuite) TestShootSpawnsProjectile() {
	r := s.newRoom("alice", "bob")
	_, _ = r.Start("alice")

	p, err := r.Shoot("alice", physics.Vec(100, 100), 0)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), p.OwnerID)
	s.Equal(1, r.Summary().ProjectileCount)

	_, err = r.Shoot("ghost", physics.Vec(100, 100), 0)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Simulation

func (s *RoomSuite) TestStepIgnoresWaitingRoom() {
	r := s.newRoom("alice", "bob")
	res := r.Step()
	s.False(res.Simulated)
}

func (s *RoomSuite) TestStepMovesProjectiles() {
	r := s.newRoom("alice", "bob")
	s.place(r, "alice", 100, 100)
	s.place(r, "bob", 700, 500)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(400, 300), 0)

	res := r.Step()
	s.True(res.Simulated)
	s.True(res.Changed)
	s.Require().Len(res.Projectiles, 1)
	s.InDelta(400+400*0.033, res.Projectiles[0].Position.X, 1e-9)
}

func (s *RoomSuite) TestStepWallHitRemovesProjectile() {
	r := s.newRoom("alice", "bob")
	s.place(r, "alice", 100, 100)
	s.place(r, "bob", 100, 500)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(790, 300), 0)

	res := r.Step()
	s.Len(res.WallHits, 1)
	s.Empty(res.Projectiles)
	s.True(res.Changed, "the emptied set is still broadcast")

	res = r.Step()
	s.False(res.Changed)
}

func (s *RoomSuite) TestStepAppliesDamage() {
	r := s.newRoom("alice", "bob")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	_, _ = r.Start("alice")
	shot, _ := r.Shoot("alice", physics.Vec(290, 300), 0)

	res := r.Step()
	s.Require().Len(res.Hits, 1)
	s.Equal(shot.ID, res.Hits[0].ProjectileID)
	s.Equal(model.PlayerID("bob"), res.Hits[0].PlayerID)
	s.Equal(20, res.Hits[0].Damage)
	s.Equal(80, res.Hits[0].Health)
	s.Empty(res.Deaths)
	s.Nil(res.GameOver)
	sum := r.Summary()
	s.Equal(80, sum.GetPlayer("bob").Health)
}

func (s *RoomSuite) TestTwoDeathsInOneTickEndGameOnce() {
	s.lethal()
	r := s.newRoom("alice", "bob", "carol")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	s.place(r, "carol", 500, 100)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(290, 300), 0)       // hits bob
	_, _ = r.Shoot("carol", physics.Vec(110, 300), math.Pi) // hits alice

	res := r.Step()
	s.Len(res.Deaths, 2)
	s.Require().NotNil(res.GameOver)
	s.Equal(model.PlayerID("carol"), res.GameOver.WinnerID)
	s.Equal("carol", res.GameOver.WinnerUsername)
	s.Equal(model.RoomStatusFinished, r.Status())

	killers := map[string]string{}
	for _, d := range res.Deaths {
		killers[d.Username] = d.KillerUsername
	}
	s.Equal(map[string]string{"bob": "alice", "alice": "carol"}, killers)

	again := r.Step()
	s.False(again.Simulated)
	s.Nil(again.GameOver)
}

func (s *RoomSuite) TestCreatorDeathMigratesCreator() {
	s.lethal()
	r := s.newRoom("alice", "bob", "carol")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	s.place(r, "carol", 500, 100)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("bob", physics.Vec(110, 300), math.Pi) // hits alice

	res := r.Step()
	s.Require().Len(res.Deaths, 1)
	s.Nil(res.GameOver)
	s.Require().NotNil(res.NewCreator)
	s.Equal(model.PlayerID("bob"), res.NewCreator.ID)
	s.True(res.NewCreator.IsCreator)
	s.Len(res.Players, 2)

	sum := r.Summary()
	s.Equal(model.PlayerID("bob"), sum.CreatorID)
	s.Require().NotNil(sum.GetPlayer("bob"))
	s.True(sum.GetPlayer("bob").IsCreator)
	s.Equal(1, countCreators(sum.Players))
	s.True(r.OwnedBy("bob"))
	s.False(r.OwnedBy("alice"))
}

func (s *RoomSuite) TestMemberDeathKeepsCreator() {
	s.lethal()
	r := s.newRoom("alice", "bob", "carol")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	s.place(r, "carol", 500, 100)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(290, 300), 0) // hits bob

	res := r.Step()
	s.Require().Len(res.Deaths, 1)
	s.Nil(res.NewCreator)
	s.Empty(res.Players)
	s.Equal(model.PlayerID("alice"), r.Summary().CreatorID)
}

func (s *RoomSuite) TestMatchResultTalliesKills() {
	s.lethal()
	r := s.newRoom("alice", "bob")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(290, 300), 0)

	over := r.Step().GameOver
	s.Require().NotNil(over)
	m := over.Match
	s.Equal(r.ID(), m.RoomID)
	s.Equal("alice", m.WinnerUsername)
	s.Require().Len(m.Participants, 2)
	s.Equal(1, m.Participants[0].Kills)
	s.True(m.Participants[1].Died)
}

func (s *RoomSuite) TestMutualKillIsDraw() {
	s.lethal()
	r := s.newRoom("alice", "bob")
	s.place(r, "alice", 100, 300)
	s.place(r, "bob", 300, 300)
	_, _ = r.Start("alice")
	_, _ = r.Shoot("alice", physics.Vec(290, 300), 0)
	_, _ = r.Shoot("bob", physics.Vec(110, 300), math.Pi)

	over := r.Step().GameOver
	s.Require().NotNil(over)
	s.Empty(over.WinnerID)
	s.True(over.Match.IsDraw())
}

func (s *RoomSuite) TestForfeitWaitsForGraceWindow() {
	r := s.newRoom("alice", "bob")
	_, _ = r.Start("alice")
	_, _ = r.Leave("bob")

	s.clock.Advance(5 * time.Second)
	s.Nil(r.Step().GameOver, "bob may still reconnect")

	s.clock.Advance(6 * time.Second)
	over := r.Step().GameOver
	s.Require().NotNil(over)
	s.Equal("alice", over.WinnerUsername)
	s.True(over.Match.Participants[1].Forfeited)
}

func (s *RoomSuite) TestReconnectCancelsForfeit() {
	r := s.newRoom("alice", "bob")
	_, _ = r.Start("alice")
	_, _ = r.Leave("bob")

	s.clock.Advance(5 * time.Second)
	_, err := r.Join("bob-2", "bob", &model.DisconnectRecord{Username: "bob", RoomID: r.ID(), Health: 100})
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Second)
	s.Nil(r.Step().GameOver)
	s.Equal(model.RoomStatusPlaying, r.Status())
}

func countCreators(players []model.Player) int {
	n := 0
	for _, p := range players {
		if p.IsCreator {
			n++
		}
	}
	return n
}

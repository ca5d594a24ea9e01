package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arenagame-go/internal/api/apierr"
	"github.com/mcoot/arenagame-go/internal/api/response"
	"github.com/mcoot/arenagame-go/internal/factory"
	"github.com/mcoot/arenagame-go/internal/middleware"
	"github.com/mcoot/arenagame-go/internal/model"
)

type testServer struct {
	app *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return &testServer{app: factory.NewTestApp()}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.app.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func (ts *testServer) createRoom(t *testing.T, code string, conn model.PlayerID, username string) model.RoomID {
	t.Helper()
	ts.app.MockRandom.QueueString(code)
	r, err := ts.app.Directory.CreateRoom(context.Background(), conn, username)
	require.NoError(t, err)
	return r.ID()
}

func (ts *testServer) saveMatch(t *testing.T, id string, finished time.Time) {
	t.Helper()
	ctx := context.Background()
	match := &model.MatchResult{
		ID:             model.MatchID(id),
		RoomID:         "ROOM01",
		WinnerID:       "c1",
		WinnerUsername: "alice",
		Participants: []model.MatchParticipant{
			{PlayerID: "c1", Username: "alice", Kills: 1},
			{PlayerID: "c2", Username: "bob", Died: true},
		},
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
	}
	require.NoError(t, ts.app.Storage.SaveMatch(ctx, match))
	for _, d := range match.StatsDeltas() {
		require.NoError(t, ts.app.Storage.UpdatePlayerStats(ctx, d))
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.createRoom(t, "ROOM01", "c1", "alice")

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))

	body := decode[response.Health](t, rr)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Rooms)
	assert.Equal(t, 0, body.Connections)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-1")
	rr := httptest.NewRecorder()
	ts.app.Router.ServeHTTP(rr, req)

	assert.Equal(t, "trace-1", rr.Header().Get(middleware.RequestIDHeader))
}

func TestListRooms(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"rooms":[]}`, rr.Body.String())

	ts.createRoom(t, "ROOM01", "c1", "alice")
	ts.app.MockClock.Advance(time.Second)
	ts.createRoom(t, "ROOM02", "c2", "bob")

	rr = ts.request(http.MethodGet, "/api/v1/rooms")
	list := decode[response.RoomList](t, rr)
	require.Len(t, list.Rooms, 2)
	assert.Equal(t, "ROOM01", list.Rooms[0].ID)
	assert.Equal(t, "ROOM02", list.Rooms[1].ID)
	assert.Equal(t, "waiting", list.Rooms[0].Status)
	assert.Equal(t, 1, list.Rooms[0].PlayerCount)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createRoom(t, "ROOM01", "c1", "alice")
	_, err := ts.app.Directory.JoinRoom(context.Background(), "c2", id, "bob")
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/room01")
	require.Equal(t, http.StatusOK, rr.Code)

	room := decode[response.Room](t, rr)
	assert.Equal(t, "ROOM01", room.ID)
	assert.Equal(t, "c1", room.CreatorID)
	require.Len(t, room.Players, 2)
	assert.Equal(t, "alice", room.Players[0].Username)
	assert.True(t, room.Players[0].IsCreator)
	assert.Equal(t, "bob", room.Players[1].Username)
	assert.Equal(t, 100, room.Players[1].Health)
	assert.Nil(t, room.StartedAt)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE00")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	body := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, apierr.CodeNotFound, body.Error.Code)
	assert.Equal(t, "room not found", body.Error.Message)
}

func TestListMatches(t *testing.T) {
	ts := newTestServer(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ts.saveMatch(t, "m1", base)
	ts.saveMatch(t, "m2", base.Add(time.Minute))
	ts.saveMatch(t, "m3", base.Add(2*time.Minute))

	rr := ts.request(http.MethodGet, "/api/v1/matches")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[response.MatchList](t, rr)
	require.Len(t, list.Matches, 3)
	assert.Equal(t, model.MatchID("m3"), list.Matches[0].ID)

	rr = ts.request(http.MethodGet, "/api/v1/matches?limit=2")
	list = decode[response.MatchList](t, rr)
	require.Len(t, list.Matches, 2)
	assert.Equal(t, model.MatchID("m2"), list.Matches[1].ID)
}

func TestListMatchesBadLimit(t *testing.T) {
	ts := newTestServer(t)

	for _, q := range []string{"abc", "0", "-3"} {
		rr := ts.request(http.MethodGet, "/api/v1/matches?limit="+q)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
		body := decode[apierr.ErrorResponse](t, rr)
		assert.Equal(t, apierr.CodeInvalidRequest, body.Error.Code)
	}
}

func TestGetMatch(t *testing.T) {
	ts := newTestServer(t)
	ts.saveMatch(t, "m1", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	rr := ts.request(http.MethodGet, "/api/v1/matches/m1")
	require.Equal(t, http.StatusOK, rr.Code)
	match := decode[model.MatchResult](t, rr)
	assert.Equal(t, "alice", match.WinnerUsername)
	assert.Len(t, match.Participants, 2)

	rr = ts.request(http.MethodGet, "/api/v1/matches/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayerStats(t *testing.T) {
	ts := newTestServer(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ts.saveMatch(t, "m1", base)
	ts.saveMatch(t, "m2", base.Add(time.Minute))

	rr := ts.request(http.MethodGet, "/api/v1/players/alice/stats")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[model.PlayerStats](t, rr)
	assert.Equal(t, 2, stats.MatchesPlayed)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 2, stats.Kills)

	rr = ts.request(http.MethodGet, "/api/v1/players/bob/stats")
	stats = decode[model.PlayerStats](t, rr)
	assert.Equal(t, 0, stats.Wins)
	assert.Equal(t, 2, stats.Deaths)

	rr = ts.request(http.MethodGet, "/api/v1/players/nobody/stats")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/rooms")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := map[error]int{
		model.ErrRoomNotFound:     http.StatusNotFound,
		model.ErrGameInProgress:   http.StatusConflict,
		model.ErrNotCreator:       http.StatusForbidden,
		model.ErrUsernameOwnsRoom: http.StatusConflict,
		model.ErrUpdateTooSoon:    http.StatusTooManyRequests,
		assert.AnError:            http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, apierr.Status(err), err.Error())
	}
}

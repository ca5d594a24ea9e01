package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/arenagame-go/internal/api/request"
	"github.com/mcoot/arenagame-go/internal/api/response"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/services/history"
	"github.com/mcoot/arenagame-go/internal/storage"
)

// MatchHandler serves recorded match history and player totals
type MatchHandler struct {
	history *history.Recorder
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(recorder *history.Recorder) *MatchHandler {
	return &MatchHandler{history: recorder}
}

// List handles GET /api/v1/matches?limit=N
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := request.Limit(r, storage.DefaultListLimit)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	matches, err := h.history.ListMatches(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchListFromModel(matches))
}

// Get handles GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	match, err := h.history.GetMatch(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, match)
}

// Stats handles GET /api/v1/players/{username}/stats
func (h *MatchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(mux.Vars(r)["username"])
	if username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}

	stats, err := h.history.PlayerStats(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

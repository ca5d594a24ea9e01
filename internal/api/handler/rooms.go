package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arenagame-go/internal/api/response"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/protocol"
	"github.com/mcoot/arenagame-go/internal/services/directory"
)

// RoomHandler exposes the room directory read-only
type RoomHandler struct {
	directory *directory.Directory
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(dir *directory.Directory) *RoomHandler {
	return &RoomHandler{directory: dir}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.RoomListFromModel(h.directory.Rooms()))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(protocol.NormalizeRoomID(mux.Vars(r)["id"]))

	room, err := h.directory.Room(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room.Summary()))
}

package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marubatsu_server/services"

	"github.com/gorilla/mux"
)

// RoomController struct
type RoomController struct {
	RoomService *services.RoomService
}

// NewRoomController initializes the controller
func NewRoomController(service *services.RoomService) *RoomController {
	return &RoomController{RoomService: service}
}

// GetRoom - fetch a room by its id
func (c *RoomController) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	room, err := c.RoomService.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			http.Error(w, `{"error": "Room not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to fetch room %s: %v", roomID, err)
		http.Error(w, `{"error": "Failed to fetch room"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(room)
}

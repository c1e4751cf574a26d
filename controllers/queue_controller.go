package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marubatsu_server/services"

	"github.com/gorilla/mux"
)

// QueueController struct
type QueueController struct {
	QueueService *services.QueueService
}

// NewQueueController initializes the controller
func NewQueueController(service *services.QueueService) *QueueController {
	return &QueueController{QueueService: service}
}

// JoinQueue - enqueue a player for matchmaking
func (c *QueueController) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PlayerID string `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.PlayerID == "" {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	entry, err := c.QueueService.JoinQueue(r.Context(), request.PlayerID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyQueued) {
			http.Error(w, `{"error": "Player is already queued"}`, http.StatusConflict)
			return
		}
		log.Printf("❌ Failed to enqueue player %s: %v", request.PlayerID, err)
		http.Error(w, `{"error": "Failed to join queue"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// LeaveQueue - cancel a pending matchmaking request
func (c *QueueController) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	if err := c.QueueService.LeaveQueue(r.Context(), playerID); err != nil {
		if errors.Is(err, services.ErrNotQueued) {
			http.Error(w, `{"error": "Player is not queued"}`, http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to dequeue player %s: %v", playerID, err)
		http.Error(w, `{"error": "Failed to leave queue"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Left the queue"})
}

// GetQueueStatus - waiting / matched status for a player
func (c *QueueController) GetQueueStatus(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	status, err := c.QueueService.QueueStatus(r.Context(), playerID)
	if err != nil {
		log.Printf("❌ Failed to read queue status for %s: %v", playerID, err)
		http.Error(w, `{"error": "Failed to fetch queue status"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

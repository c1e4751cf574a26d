package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marubatsu_server/models"
	"marubatsu_server/services"

	"github.com/gorilla/mux"
)

// UserProfileController struct
type UserProfileController struct {
	UserProfileService *services.UserProfileService
}

// NewUserProfileController initializes the controller
func NewUserProfileController(service *services.UserProfileService) *UserProfileController {
	return &UserProfileController{UserProfileService: service}
}

// PutUserProfile - create or replace a player profile
func (c *UserProfileController) PutUserProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil || profile.PlayerID == "" {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	saved, err := c.UserProfileService.PutUserProfile(r.Context(), profile)
	if err != nil {
		log.Printf("❌ Failed to save profile for %s: %v", profile.PlayerID, err)
		http.Error(w, `{"error": "Failed to save profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

// GetUserProfile - fetch a player profile
func (c *UserProfileController) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	profile, err := c.UserProfileService.GetUserProfile(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			http.Error(w, `{"error": "Profile not found"}`, http.StatusNotFound)
			return
		}
		log.Printf("❌ Failed to fetch profile for %s: %v", playerID, err)
		http.Error(w, `{"error": "Failed to fetch profile"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

package routes

import (
	"marubatsu_server/controllers"
	"marubatsu_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for user profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService) {
	// Initialize the controller with the provided UserProfileService
	controller := controllers.NewUserProfileController(userProfileService)

	// Create a subrouter for the /api/profiles base path
	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	// Define routes and their corresponding handlers
	profileRouter.HandleFunc("", controller.PutUserProfile).Methods("POST")
	profileRouter.HandleFunc("/{playerId}", controller.GetUserProfile).Methods("GET")
}

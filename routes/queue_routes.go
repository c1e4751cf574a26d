package routes

import (
	"marubatsu_server/controllers"
	"marubatsu_server/services"

	"github.com/gorilla/mux"
)

// RegisterQueueRoutes sets up routes for matchmaking queue operations under /api/queue
func RegisterQueueRoutes(r *mux.Router, queueService *services.QueueService) {
	controller := controllers.NewQueueController(queueService)

	queueRouter := r.PathPrefix("/api/queue").Subrouter()

	queueRouter.HandleFunc("", controller.JoinQueue).Methods("POST")
	queueRouter.HandleFunc("/{playerId}", controller.GetQueueStatus).Methods("GET")
	queueRouter.HandleFunc("/{playerId}", controller.LeaveQueue).Methods("DELETE")
}

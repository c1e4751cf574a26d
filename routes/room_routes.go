package routes

import (
	"marubatsu_server/controllers"
	"marubatsu_server/services"

	"github.com/gorilla/mux"
)

// RegisterRoomRoutes sets up routes for room lookups under /api/room
func RegisterRoomRoutes(r *mux.Router, roomService *services.RoomService) {
	controller := controllers.NewRoomController(roomService)

	roomRouter := r.PathPrefix("/api/room").Subrouter()

	roomRouter.HandleFunc("/{roomId}", controller.GetRoom).Methods("GET")
}

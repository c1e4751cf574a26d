package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"marubatsu_server/models"
	"marubatsu_server/routes"
	"marubatsu_server/services"
	"marubatsu_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB clients and store
	log.Printf("Initializing DynamoDB clients (region %s)...", services.Region())
	dynamoService := &services.DynamoService{Client: services.InitializeDynamoDBClient()}
	store := &services.DynamoStore{Dynamo: dynamoService}
	log.Println("DynamoDB clients initialized.")

	// Initialize Services
	userProfileService := &services.UserProfileService{Store: store}
	queueService := &services.QueueService{Store: store}
	roomService := &services.RoomService{Dynamo: dynamoService}
	matchmakerService := &services.MatchmakerService{Store: store}

	// Socket.IO server pushes committed pairings to both players
	socketServer := socket.NewSocketServer()
	matchmakerService.OnMatch = func(room models.Room) {
		socket.NotifyMatch(socketServer, room)
	}
	go socketServer.Serve()
	defer socketServer.Close()

	// Matchmaker runs once per queue-entry creation event
	dispatcher := services.NewStreamDispatcher(services.InitializeStreamsClient(), matchmakerService.AttemptPairing)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Stream dispatcher stopped: %v", err)
		}
	}()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Marubatsu")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterUserProfileRoutes(r, userProfileService)
	routes.RegisterQueueRoutes(r, queueService)
	routes.RegisterRoomRoutes(r, roomService)
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}

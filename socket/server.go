package socket

import (
	"log"

	"marubatsu_server/models"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes and returns a new Socket.IO server. Waiting
// clients join a channel named after their playerId and get pushed the
// room once their pairing commits.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, playerID string) {
		if playerID == "" {
			log.Println("❌ Invalid playerId in join request")
			return
		}
		log.Printf("👥 Player %s listening for a match\n", playerID)
		c.Join(playerChannel(playerID))
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return server
}

// NotifyMatch pushes the freshly created room to both paired players.
func NotifyMatch(server *socketio.Server, room models.Room) {
	payload := map[string]interface{}{
		"roomId":  room.RoomID,
		"players": room.Players,
		"names":   room.Names,
		"turn":    room.Turn,
	}
	for _, playerID := range room.Players {
		server.BroadcastToRoom("/", playerChannel(playerID), "matchFound", payload)
	}
}

func playerChannel(playerID string) string {
	return "player:" + playerID
}

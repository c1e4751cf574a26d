package models

type Room struct {
	RoomID    string            `dynamodbav:"roomId" json:"roomId"`       // Unique roomId
	Players   []string          `dynamodbav:"players" json:"players"`     // Ordered pair, players[0] moves first
	Names     map[string]string `dynamodbav:"names" json:"names"`         // playerId -> display name
	Turn      string            `dynamodbav:"turn" json:"turn"`           // playerId whose move it is
	Board     []int             `dynamodbav:"board" json:"board"`         // 9 cells, 0 = empty
	Status    string            `dynamodbav:"status" json:"status"`       // playing, finished
	UpdatedAt string            `dynamodbav:"updatedAt" json:"updatedAt"` // Timestamp of last write
}

// RoomsTable is the DynamoDB table name for game rooms
const RoomsTable = "Rooms"

// Room Statuses
const (
	RoomStatusPlaying  = "playing"
	RoomStatusFinished = "finished"
)

// Board cell values
const (
	CellEmpty   = 0
	CellPlayer1 = 1
	CellPlayer2 = 2
)

// BoardSize is the number of cells on a tic-tac-toe board.
const BoardSize = 9

// EmptyBoard returns a fresh all-empty board.
func EmptyBoard() []int {
	return make([]int, BoardSize)
}

package models

import "time"

// QueueEntry represents one player's pending matchmaking request.
// Entries live under a single partition so the matchmaker can drain them
// oldest-first with an ordered query on the sort key.
type QueueEntry struct {
	Bucket   string `dynamodbav:"bucket" json:"-"`
	JoinedAt string `dynamodbav:"joinedAt" json:"joinedAt"` // Sort Key (SK) - join timestamp + playerId tiebreak
	PlayerID string `dynamodbav:"playerId" json:"playerId"`
}

// QueueMarker is a per-player item written alongside the queue entry. Its
// conditional creation is what guarantees a player holds at most one queue
// entry at a time; it also remembers the entry's sort key so the entry can
// be removed again without scanning.
type QueueMarker struct {
	Bucket   string `dynamodbav:"bucket"`
	JoinedAt string `dynamodbav:"joinedAt"`
	EntryKey string `dynamodbav:"entryKey"`
}

// MatchmakingQueueTable is the DynamoDB table name for the matchmaking queue
const MatchmakingQueueTable = "MatchmakingQueue"

const (
	// QueueBucket is the partition all queue entries share.
	QueueBucket = "queue"

	// MarkerSortKey is the fixed sort key of per-player marker items.
	MarkerSortKey = "marker"
)

// MarkerBucket returns the partition key of a player's queue marker.
func MarkerBucket(playerID string) string {
	return "player#" + playerID
}

// NewQueueEntry builds the entry for a player joining at t. The playerId
// suffix keeps the sort order total even when two players join on the same
// timestamp tick.
func NewQueueEntry(playerID string, t time.Time) QueueEntry {
	return QueueEntry{
		Bucket:   QueueBucket,
		JoinedAt: t.UTC().Format(time.RFC3339Nano) + "#" + playerID,
		PlayerID: playerID,
	}
}

// NewQueueMarker builds the marker paired with entry.
func NewQueueMarker(entry QueueEntry) QueueMarker {
	return QueueMarker{
		Bucket:   MarkerBucket(entry.PlayerID),
		JoinedAt: MarkerSortKey,
		EntryKey: entry.JoinedAt,
	}
}

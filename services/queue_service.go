package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marubatsu_server/models"
)

// Queue errors callers are expected to branch on.
var (
	ErrAlreadyQueued = errors.New("player is already in the matchmaking queue")
	ErrNotQueued     = errors.New("player is not in the matchmaking queue")
)

// QueueStatus is what a waiting client polls for.
type QueueStatus struct {
	PlayerID string `json:"playerId"`
	Waiting  bool   `json:"waiting"`
	RoomID   string `json:"roomId,omitempty"`
}

// QueueService is the producer side of the matchmaking queue.
type QueueService struct {
	Store *DynamoStore
}

// JoinQueue enqueues a player. The underlying transaction aborts if the
// player already holds an entry, so double joins cannot happen.
func (qs *QueueService) JoinQueue(ctx context.Context, playerID string) (*models.QueueEntry, error) {
	entry := models.NewQueueEntry(playerID, time.Now())

	outcome, err := qs.Store.EnqueuePlayer(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to join queue: %w", err)
	}
	if outcome == TxAborted {
		return nil, ErrAlreadyQueued
	}

	log.Printf("Player %s joined the matchmaking queue", playerID)
	return &entry, nil
}

// LeaveQueue cancels a pending matchmaking request. Returns ErrNotQueued
// when the player has no entry, including when a pairing consumed it first.
func (qs *QueueService) LeaveQueue(ctx context.Context, playerID string) error {
	outcome, err := qs.Store.DequeuePlayer(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to leave queue: %w", err)
	}
	if outcome == TxAborted {
		return ErrNotQueued
	}

	log.Printf("Player %s left the matchmaking queue", playerID)
	return nil
}

// QueueStatus reports whether the player is still waiting and, once a
// pairing commits, the room they were assigned to.
func (qs *QueueService) QueueStatus(ctx context.Context, playerID string) (*QueueStatus, error) {
	waiting, err := qs.Store.IsQueued(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue status: %w", err)
	}

	status := &QueueStatus{PlayerID: playerID, Waiting: waiting}
	if waiting {
		return status, nil
	}

	profile, err := qs.Store.GetUserProfile(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile for queue status: %w", err)
	}
	if profile != nil {
		status.RoomID = profile.CurrentRoomID
	}
	return status, nil
}

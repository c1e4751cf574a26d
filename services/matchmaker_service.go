package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"marubatsu_server/models"

	"github.com/google/uuid"
)

// MatchmakerService drains the matchmaking queue two players at a time and
// provisions a room for each pair. It is safe to invoke concurrently: the
// only serialization point is the store's conditional transaction, and a
// lost race simply leaves the entries for the next invocation.
type MatchmakerService struct {
	Store MatchmakingStore

	// Flip decides turn order; nil defaults to a uniform coin flip.
	// Injectable so tests can pin the ordering.
	Flip func() bool

	// OnMatch, if set, is called after a pairing commits. Used to push the
	// room to both players over the socket layer.
	OnMatch func(room models.Room)
}

// AttemptPairing reads the two oldest waiting players and, if both are
// still available at commit time, pairs them into a new room.
//
// Fewer than two waiting players is a normal no-op. A lost race against a
// concurrent pairing is swallowed after logging. Store failures are
// returned so the caller's retry policy can deal with them.
func (ms *MatchmakerService) AttemptPairing(ctx context.Context) error {
	entries, err := ms.Store.OldestQueueEntries(ctx, 2)
	if err != nil {
		return fmt.Errorf("failed to read queue head: %w", err)
	}
	if len(entries) < 2 {
		log.Println("Waiting for an opponent...")
		return nil
	}

	first, second := entries[0], entries[1]
	if first.PlayerID == second.PlayerID {
		// Two entries for one player should be impossible while the join
		// marker holds; refuse to build a one-player room.
		return fmt.Errorf("refusing to pair player %q with themselves", first.PlayerID)
	}

	name1 := ms.displayName(ctx, first.PlayerID)
	name2 := ms.displayName(ctx, second.PlayerID)

	players := []string{first.PlayerID, second.PlayerID}
	if ms.flip() {
		players[0], players[1] = players[1], players[0]
	}

	room := models.Room{
		RoomID:  uuid.NewString(),
		Players: players,
		Names: map[string]string{
			first.PlayerID:  name1,
			second.PlayerID: name2,
		},
		Turn:      players[0],
		Board:     models.EmptyBoard(),
		Status:    models.RoomStatusPlaying,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	outcome, err := ms.Store.CommitPairing(ctx, room, first, second)
	if err != nil {
		return fmt.Errorf("pairing transaction failed: %w", err)
	}
	if outcome == TxAborted {
		// A concurrent invocation already consumed one of the entries.
		log.Printf("Pairing race lost for %s vs %s, leaving the queue to a later attempt", first.PlayerID, second.PlayerID)
		return nil
	}

	log.Printf("✅ Match made: room %s (%s vs %s), first turn %s", room.RoomID, name1, name2, room.Turn)
	if ms.OnMatch != nil {
		ms.OnMatch(room)
	}
	return nil
}

// displayName resolves a player's name, falling back to a default when the
// profile is missing or the lookup fails. A name miss never aborts pairing.
func (ms *MatchmakerService) displayName(ctx context.Context, playerID string) string {
	profile, err := ms.Store.GetUserProfile(ctx, playerID)
	if err != nil {
		log.Printf("Profile lookup failed for %s, using fallback name: %v", playerID, err)
		return models.DefaultDisplayName
	}
	if profile == nil || profile.Name == "" {
		return models.DefaultDisplayName
	}
	return profile.Name
}

func (ms *MatchmakerService) flip() bool {
	if ms.Flip != nil {
		return ms.Flip()
	}
	return rand.Intn(2) == 1
}

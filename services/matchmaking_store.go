package services

import (
	"context"
	"errors"
	"fmt"

	"marubatsu_server/models"
	"marubatsu_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TxOutcome is the result of a conditional multi-item transaction. A lost
// race is not an error: callers branch on TxAborted explicitly instead of
// untangling it from a generic failure.
type TxOutcome int

const (
	// TxCommitted means every write applied.
	TxCommitted TxOutcome = iota
	// TxAborted means a precondition failed and nothing applied; a
	// competing transaction already consumed one of the target items.
	TxAborted
)

// MatchmakingStore is the store contract the matchmaker pairs against.
// Keeping it narrow lets tests drive the pairing protocol with a fake.
type MatchmakingStore interface {
	// OldestQueueEntries returns up to limit entries ordered oldest-first.
	OldestQueueEntries(ctx context.Context, limit int32) ([]models.QueueEntry, error)
	// GetUserProfile returns nil without error when the profile is absent.
	GetUserProfile(ctx context.Context, playerID string) (*models.UserProfile, error)
	// CommitPairing atomically creates the room, links both profiles to it
	// and removes both queue entries, conditional on the entries still
	// existing at commit time.
	CommitPairing(ctx context.Context, room models.Room, first, second models.QueueEntry) (TxOutcome, error)
}

// DynamoStore implements the matchmaking store on DynamoDB. It also carries
// the producer-side queue transactions so every conditional write shares the
// same outcome mapping.
type DynamoStore struct {
	Dynamo *DynamoService
}

// OldestQueueEntries reads the queue head. This is a snapshot read: by the
// time a pairing commits, the entries may already be gone.
func (s *DynamoStore) OldestQueueEntries(ctx context.Context, limit int32) ([]models.QueueEntry, error) {
	items, err := s.Dynamo.QueryItemsOrdered(
		ctx,
		models.MatchmakingQueueTable,
		"#b = :b",
		map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: models.QueueBucket},
		},
		map[string]string{"#b": "bucket"},
		limit,
		true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read matchmaking queue: %w", err)
	}

	var entries []models.QueueEntry
	if err := attributevalue.UnmarshalListOfMaps(items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue entries: %w", err)
	}
	return entries, nil
}

// GetUserProfile retrieves a user profile by player ID
func (s *DynamoStore) GetUserProfile(ctx context.Context, playerID string) (*models.UserProfile, error) {
	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, map[string]types.AttributeValue{
		"playerId": &types.AttributeValueMemberS{Value: playerID},
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// CommitPairing performs the pairing transaction: one room created, two
// profiles linked, two queue entries and their markers removed. The entry
// deletes are conditional on existence, which is what makes concurrent
// pairing attempts consume each entry at most once.
func (s *DynamoStore) CommitPairing(ctx context.Context, room models.Room, first, second models.QueueEntry) (TxOutcome, error) {
	roomItem, err := attributevalue.MarshalMap(room)
	if err != nil {
		return TxAborted, fmt.Errorf("failed to marshal room: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(models.RoomsTable),
				Item:                roomItem,
				ConditionExpression: aws.String("attribute_not_exists(roomId)"),
			},
		},
	}
	for _, playerID := range room.Players {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(models.UserProfilesTable),
				Key: map[string]types.AttributeValue{
					"playerId": &types.AttributeValueMemberS{Value: playerID},
				},
				UpdateExpression: aws.String("SET currentRoomId = :rid"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":rid": &types.AttributeValueMemberS{Value: room.RoomID},
				},
			},
		})
	}
	for _, entry := range []models.QueueEntry{first, second} {
		items = append(items,
			types.TransactWriteItem{
				Delete: &types.Delete{
					TableName:           aws.String(models.MatchmakingQueueTable),
					Key:                 queueEntryKey(entry),
					ConditionExpression: aws.String("attribute_exists(playerId)"),
				},
			},
			types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(models.MatchmakingQueueTable),
					Key:       markerKey(entry.PlayerID),
				},
			},
		)
	}

	return s.transactWrite(ctx, items)
}

// EnqueuePlayer writes the entry and its marker together. The marker's
// not-exists condition enforces at most one queue entry per player.
func (s *DynamoStore) EnqueuePlayer(ctx context.Context, entry models.QueueEntry) (TxOutcome, error) {
	entryItem, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return TxAborted, fmt.Errorf("failed to marshal queue entry: %w", err)
	}
	markerItem, err := attributevalue.MarshalMap(models.NewQueueMarker(entry))
	if err != nil {
		return TxAborted, fmt.Errorf("failed to marshal queue marker: %w", err)
	}

	return s.transactWrite(ctx, []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(models.MatchmakingQueueTable),
				Item:                markerItem,
				ConditionExpression: aws.String("attribute_not_exists(#b)"),
				ExpressionAttributeNames: map[string]string{
					"#b": "bucket",
				},
			},
		},
		{
			Put: &types.Put{
				TableName: aws.String(models.MatchmakingQueueTable),
				Item:      entryItem,
			},
		},
	})
}

// DequeuePlayer removes a player's entry and marker, conditional on the
// entry still being present. Aborts when the player is not queued or was
// consumed by a pairing in the meantime.
func (s *DynamoStore) DequeuePlayer(ctx context.Context, playerID string) (TxOutcome, error) {
	marker, err := s.Dynamo.GetItem(ctx, models.MatchmakingQueueTable, markerKey(playerID))
	if err != nil {
		return TxAborted, err
	}
	if marker == nil {
		return TxAborted, nil
	}

	entryKey := utils.ExtractString(marker, "entryKey")
	return s.transactWrite(ctx, []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName: aws.String(models.MatchmakingQueueTable),
				Key: map[string]types.AttributeValue{
					"bucket":   &types.AttributeValueMemberS{Value: models.QueueBucket},
					"joinedAt": &types.AttributeValueMemberS{Value: entryKey},
				},
				ConditionExpression: aws.String("attribute_exists(playerId)"),
			},
		},
		{
			Delete: &types.Delete{
				TableName: aws.String(models.MatchmakingQueueTable),
				Key:       markerKey(playerID),
			},
		},
	})
}

// IsQueued reports whether a player currently holds a queue marker.
func (s *DynamoStore) IsQueued(ctx context.Context, playerID string) (bool, error) {
	marker, err := s.Dynamo.GetItem(ctx, models.MatchmakingQueueTable, markerKey(playerID))
	if err != nil {
		return false, err
	}
	return marker != nil, nil
}

func (s *DynamoStore) transactWrite(ctx context.Context, items []types.TransactWriteItem) (TxOutcome, error) {
	_, err := s.Dynamo.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return TxCommitted, nil
	}

	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return TxAborted, nil
			}
		}
	}
	return TxAborted, fmt.Errorf("transaction failed: %w", err)
}

func queueEntryKey(entry models.QueueEntry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"bucket":   &types.AttributeValueMemberS{Value: entry.Bucket},
		"joinedAt": &types.AttributeValueMemberS{Value: entry.JoinedAt},
	}
}

func markerKey(playerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"bucket":   &types.AttributeValueMemberS{Value: models.MarkerBucket(playerID)},
		"joinedAt": &types.AttributeValueMemberS{Value: models.MarkerSortKey},
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"marubatsu_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamoClient scripts the DynamoDB API surface the store touches.
type fakeDynamoClient struct {
	queryFn    func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	getFn      func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putFn      func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	deleteFn   func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	transactFn func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
}

func (f *fakeDynamoClient) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return f.queryFn(in)
}

func (f *fakeDynamoClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getFn(in)
}

func (f *fakeDynamoClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return f.putFn(in)
}

func (f *fakeDynamoClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return f.deleteFn(in)
}

func (f *fakeDynamoClient) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	return f.transactFn(in)
}

func storeWith(client *fakeDynamoClient) *DynamoStore {
	return &DynamoStore{Dynamo: &DynamoService{Client: client}}
}

func mustMarshal(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

func conditionCanceled() error {
	return &types.TransactionCanceledException{
		Message: aws.String("Transaction cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
}

func TestOldestQueueEntries_OrderedAscendingWithLimit(t *testing.T) {
	e1 := models.NewQueueEntry("p1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	e2 := models.NewQueueEntry("p2", time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC))

	var captured *dynamodb.QueryInput
	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			captured = in
			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{mustMarshal(t, e1), mustMarshal(t, e2)},
			}, nil
		},
	}

	entries, err := storeWith(client).OldestQueueEntries(context.Background(), 2)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, models.MatchmakingQueueTable, aws.ToString(captured.TableName))
	assert.EqualValues(t, 2, aws.ToInt32(captured.Limit))
	assert.True(t, aws.ToBool(captured.ScanIndexForward), "queue drain must read oldest-first")

	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].PlayerID)
	assert.Equal(t, "p2", entries[1].PlayerID)
}

func TestGetUserProfile_AbsentIsNotAnError(t *testing.T) {
	client := &fakeDynamoClient{
		getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
	}

	profile, err := storeWith(client).GetUserProfile(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestCommitPairing_TransactionShape(t *testing.T) {
	e1 := models.NewQueueEntry("p1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	e2 := models.NewQueueEntry("p2", time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC))
	room := models.Room{
		RoomID:  "room-1",
		Players: []string{"p2", "p1"},
		Names:   map[string]string{"p1": "Alice", "p2": "Bob"},
		Turn:    "p2",
		Board:   models.EmptyBoard(),
		Status:  models.RoomStatusPlaying,
	}

	var captured *dynamodb.TransactWriteItemsInput
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			captured = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}

	outcome, err := storeWith(client).CommitPairing(context.Background(), room, e1, e2)
	require.NoError(t, err)
	assert.Equal(t, TxCommitted, outcome)

	require.NotNil(t, captured)
	// room create + 2 profile links + (entry delete + marker delete) per player
	require.Len(t, captured.TransactItems, 7)

	put := captured.TransactItems[0].Put
	require.NotNil(t, put)
	assert.Equal(t, models.RoomsTable, aws.ToString(put.TableName))
	assert.Equal(t, "attribute_not_exists(roomId)", aws.ToString(put.ConditionExpression))

	for i := 1; i <= 2; i++ {
		update := captured.TransactItems[i].Update
		require.NotNil(t, update)
		assert.Equal(t, models.UserProfilesTable, aws.ToString(update.TableName))
		assert.Equal(t, "SET currentRoomId = :rid", aws.ToString(update.UpdateExpression))
	}

	var conditionalDeletes int
	for _, item := range captured.TransactItems[3:] {
		del := item.Delete
		require.NotNil(t, del)
		assert.Equal(t, models.MatchmakingQueueTable, aws.ToString(del.TableName))
		if del.ConditionExpression != nil {
			assert.Equal(t, "attribute_exists(playerId)", aws.ToString(del.ConditionExpression))
			conditionalDeletes++
		}
	}
	// both entry deletes carry the existence precondition
	assert.Equal(t, 2, conditionalDeletes)
}

func TestCommitPairing_LostRaceAborts(t *testing.T) {
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, conditionCanceled()
		},
	}

	e1 := models.NewQueueEntry("p1", time.Now())
	e2 := models.NewQueueEntry("p2", time.Now())
	outcome, err := storeWith(client).CommitPairing(context.Background(), models.Room{RoomID: "room-1", Players: []string{"p1", "p2"}}, e1, e2)
	require.NoError(t, err)
	assert.Equal(t, TxAborted, outcome)
}

func TestCommitPairing_StoreErrorSurfaces(t *testing.T) {
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, errors.New("service unavailable")
		},
	}

	e1 := models.NewQueueEntry("p1", time.Now())
	e2 := models.NewQueueEntry("p2", time.Now())
	_, err := storeWith(client).CommitPairing(context.Background(), models.Room{RoomID: "room-1", Players: []string{"p1", "p2"}}, e1, e2)
	require.Error(t, err)
}

func TestEnqueuePlayer_MarkerGuardsDoubleJoin(t *testing.T) {
	var captured *dynamodb.TransactWriteItemsInput
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			captured = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}

	entry := models.NewQueueEntry("p1", time.Now())
	outcome, err := storeWith(client).EnqueuePlayer(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, TxCommitted, outcome)

	require.NotNil(t, captured)
	require.Len(t, captured.TransactItems, 2)
	marker := captured.TransactItems[0].Put
	require.NotNil(t, marker)
	assert.Equal(t, "attribute_not_exists(#b)", aws.ToString(marker.ConditionExpression))
}

func TestEnqueuePlayer_SecondJoinAborts(t *testing.T) {
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, conditionCanceled()
		},
	}

	outcome, err := storeWith(client).EnqueuePlayer(context.Background(), models.NewQueueEntry("p1", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, TxAborted, outcome)
}

func TestDequeuePlayer_NotQueuedAborts(t *testing.T) {
	client := &fakeDynamoClient{
		getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{}, nil
		},
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			t.Fatal("no transaction expected when the marker is absent")
			return nil, nil
		},
	}

	outcome, err := storeWith(client).DequeuePlayer(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, TxAborted, outcome)
}

func TestDequeuePlayer_RemovesEntryAndMarker(t *testing.T) {
	entry := models.NewQueueEntry("p1", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	marker := models.NewQueueMarker(entry)

	var captured *dynamodb.TransactWriteItemsInput
	client := &fakeDynamoClient{
		getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: mustMarshal(t, marker)}, nil
		},
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			captured = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}

	outcome, err := storeWith(client).DequeuePlayer(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, TxCommitted, outcome)

	require.NotNil(t, captured)
	require.Len(t, captured.TransactItems, 2)

	entryDelete := captured.TransactItems[0].Delete
	require.NotNil(t, entryDelete)
	key, ok := entryDelete.Key["joinedAt"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, entry.JoinedAt, key.Value)
	assert.Equal(t, "attribute_exists(playerId)", aws.ToString(entryDelete.ConditionExpression))
}

func TestIsQueued(t *testing.T) {
	entry := models.NewQueueEntry("p1", time.Now())
	marker := models.NewQueueMarker(entry)

	client := &fakeDynamoClient{
		getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			bucket, ok := in.Key["bucket"].(*types.AttributeValueMemberS)
			require.True(t, ok)
			if bucket.Value == models.MarkerBucket("p1") {
				return &dynamodb.GetItemOutput{Item: mustMarshal(t, marker)}, nil
			}
			return &dynamodb.GetItemOutput{}, nil
		},
	}

	store := storeWith(client)
	queued, err := store.IsQueued(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = store.IsQueued(context.Background(), "p2")
	require.NoError(t, err)
	assert.False(t, queued)
}

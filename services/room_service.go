package services

import (
	"context"
	"errors"
	"fmt"

	"marubatsu_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrRoomNotFound is returned when a room id resolves to nothing.
var ErrRoomNotFound = errors.New("room not found")

type RoomService struct {
	Dynamo *DynamoService
}

// GetRoom retrieves a room by ID
func (rs *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	item, err := rs.Dynamo.GetItem(ctx, models.RoomsTable, map[string]types.AttributeValue{
		"roomId": &types.AttributeValueMemberS{Value: roomID},
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrRoomNotFound
	}

	var room models.Room
	if err := attributevalue.UnmarshalMap(item, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}
	return &room, nil
}

package services

import (
	"context"
	"errors"

	"marubatsu_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// ErrProfileNotFound is returned when a player has no profile yet.
var ErrProfileNotFound = errors.New("profile not found")

type UserProfileService struct {
	Store *DynamoStore
}

// PutUserProfile creates or replaces a player's profile.
func (ups *UserProfileService) PutUserProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return nil, err
	}
	if err := ups.Store.Dynamo.PutItem(ctx, models.UserProfilesTable, item); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetUserProfile retrieves a user profile by player ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, playerID string) (*models.UserProfile, error) {
	profile, err := ups.Store.GetUserProfile(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

package models

// UserProfile defines the structure for user profiles
type UserProfile struct {
	PlayerID      string `dynamodbav:"playerId" json:"playerId"`
	Name          string `dynamodbav:"name,omitempty" json:"name,omitempty"`
	CurrentRoomID string `dynamodbav:"currentRoomId,omitempty" json:"currentRoomId,omitempty"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// DefaultDisplayName is used when a player's profile or name is missing.
const DefaultDisplayName = "Guest"

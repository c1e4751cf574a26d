package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExtractStreamString does the same for a stream record's attribute map
func ExtractStreamString(item map[string]streamtypes.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*streamtypes.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

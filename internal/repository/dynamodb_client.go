package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"rpl-relay/internal/domain"
)

const (
	pkPrefixProfile = "PROFILE#"
	skPrefixRequest = "REQ#"
	ttlDuration     = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table used as the relay usage ledger.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func profilePK(profile string) string {
	return pkPrefixProfile + profile
}

func requestSK(at time.Time, requestID string) string {
	return skPrefixRequest + at.UTC().Format(time.RFC3339Nano) + "#" + requestID
}

// RecordUsage writes one usage record. Records are keyed by profile and
// ordered by time within it.
func (c *Client) RecordUsage(ctx context.Context, rec domain.UsageRecord) error {
	if rec.RequestID == "" || rec.Profile == "" {
		return errors.New("repository: RecordUsage: request id and profile are required")
	}
	if rec.At.IsZero() {
		rec.At = c.now()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                usageItem(rec, rec.At.Add(ttlDuration).Unix()),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordUsage: %w", err)
	}
	return nil
}

func usageItem(rec domain.UsageRecord, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":               &types.AttributeValueMemberS{Value: profilePK(rec.Profile)},
		"SK":               &types.AttributeValueMemberS{Value: requestSK(rec.At, rec.RequestID)},
		"requestId":        &types.AttributeValueMemberS{Value: rec.RequestID},
		"mode":             &types.AttributeValueMemberS{Value: rec.Mode},
		"profile":          &types.AttributeValueMemberS{Value: rec.Profile},
		"deployment":       &types.AttributeValueMemberS{Value: rec.Deployment},
		"statusCode":       numAttr(int64(rec.StatusCode)),
		"latencyMs":        numAttr(rec.LatencyMs),
		"promptTokens":     numAttr(int64(rec.PromptTokens)),
		"completionTokens": numAttr(int64(rec.CompletionTokens)),
		"totalTokens":      numAttr(int64(rec.TotalTokens)),
		"at":               &types.AttributeValueMemberS{Value: rec.At.UTC().Format(time.RFC3339Nano)},
		"ttl":              numAttr(ttl),
	}
}

func numAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"marubatsu_server/models"
	"marubatsu_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// StreamsAPI is the subset of the DynamoDB Streams client the dispatcher uses.
type StreamsAPI interface {
	ListStreams(ctx context.Context, params *dynamodbstreams.ListStreamsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.ListStreamsOutput, error)
	DescribeStream(ctx context.Context, params *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, params *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// InitializeStreamsClient initializes the DynamoDB Streams client
func InitializeStreamsClient() *dynamodbstreams.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(Region()))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodbstreams.NewFromConfig(cfg)
}

// StreamDispatcher polls the matchmaking queue table's stream and invokes
// the handler once per queue-entry INSERT. Delivery is at-least-once and
// the inserted entry may no longer be the oldest by the time the handler
// runs; the handler owns both concerns.
type StreamDispatcher struct {
	Streams      StreamsAPI
	TableName    string
	Handler      func(ctx context.Context) error
	PollInterval time.Duration

	streamArn string
	iterators map[string]string // shardId -> next iterator
}

// NewStreamDispatcher wires a dispatcher for the matchmaking queue table.
func NewStreamDispatcher(streams StreamsAPI, handler func(ctx context.Context) error) *StreamDispatcher {
	return &StreamDispatcher{
		Streams:      streams,
		TableName:    models.MatchmakingQueueTable,
		Handler:      handler,
		PollInterval: time.Second,
	}
}

// Run polls until the context is cancelled. Handler errors are logged and
// left to the next poll; they never stop the loop.
func (d *StreamDispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		if err := d.poll(ctx); err != nil {
			log.Printf("Stream poll failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *StreamDispatcher) poll(ctx context.Context) error {
	if d.iterators == nil {
		d.iterators = make(map[string]string)
	}
	if d.streamArn == "" {
		arn, err := d.resolveStreamArn(ctx)
		if err != nil {
			return err
		}
		d.streamArn = arn
	}

	describe, err := d.Streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
		StreamArn: aws.String(d.streamArn),
	})
	if err != nil {
		return fmt.Errorf("failed to describe stream: %w", err)
	}

	for _, shard := range describe.StreamDescription.Shards {
		shardID := aws.ToString(shard.ShardId)
		iterator, ok := d.iterators[shardID]
		if !ok {
			out, err := d.Streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
				StreamArn:         aws.String(d.streamArn),
				ShardId:           shard.ShardId,
				ShardIteratorType: types.ShardIteratorTypeLatest,
			})
			if err != nil {
				log.Printf("Failed to get iterator for shard %s: %v", shardID, err)
				continue
			}
			iterator = aws.ToString(out.ShardIterator)
		}
		if iterator == "" {
			continue
		}

		records, err := d.Streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
			ShardIterator: aws.String(iterator),
		})
		if err != nil {
			// An iterator can go stale, e.g. expire during a store outage.
			// Drop it so the next poll fetches a fresh one, and keep going:
			// one bad shard must not starve the others.
			log.Printf("Failed to read records for shard %s: %v", shardID, err)
			delete(d.iterators, shardID)
			continue
		}

		for _, record := range records.Records {
			d.dispatch(ctx, record)
		}

		if records.NextShardIterator == nil {
			delete(d.iterators, shardID) // shard closed
			continue
		}
		d.iterators[shardID] = aws.ToString(records.NextShardIterator)
	}
	return nil
}

// dispatch invokes the handler for queue-entry creations. Marker items
// share the table, so only images carrying a playerId count as joins.
func (d *StreamDispatcher) dispatch(ctx context.Context, record types.Record) {
	if record.EventName != types.OperationTypeInsert || record.Dynamodb == nil {
		return
	}
	playerID := utils.ExtractStreamString(record.Dynamodb.NewImage, "playerId")
	if playerID == "" {
		return
	}

	log.Printf("Queue entry created for player %s, attempting pairing", playerID)
	if err := d.Handler(ctx); err != nil {
		log.Printf("Pairing attempt failed: %v", err)
	}
}

func (d *StreamDispatcher) resolveStreamArn(ctx context.Context) (string, error) {
	out, err := d.Streams.ListStreams(ctx, &dynamodbstreams.ListStreamsInput{
		TableName: aws.String(d.TableName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list streams for table '%s': %w", d.TableName, err)
	}
	if len(out.Streams) == 0 {
		return "", fmt.Errorf("no stream enabled on table '%s'", d.TableName)
	}
	return aws.ToString(out.Streams[0].StreamArn), nil
}

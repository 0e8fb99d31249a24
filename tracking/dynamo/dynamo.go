// Package dynamo stores the scalar series of training runs in DynamoDB.
//
// Table schema:
//   - Partition key: run (string) - the run name
//   - Sort key: epoch (number) - the epoch; the run summary uses epoch -1
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name cmhash-series \
//	  --attribute-definitions AttributeName=run,AttributeType=S AttributeName=epoch,AttributeType=N \
//	  --key-schema AttributeName=run,KeyType=HASH AttributeName=epoch,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/cmhash/tracking"
)

const (
	attrRun      = "run"
	attrEpoch    = "epoch"
	attrIsBest   = "is_best"
	summaryEpoch = -1
)

// Client is the interface for DynamoDB operations.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ Client = (*dynamodb.Client)(nil)

// Series is a tracking.Sink that writes one item per epoch.
type Series struct {
	client Client
	table  string
}

var (
	_ tracking.Sink     = (*Series)(nil)
	_ tracking.Finisher = (*Series)(nil)
)

// NewSeries creates a Series writing to table.
func NewSeries(client Client, table string) *Series {
	return &Series{client: client, table: table}
}

// New loads the default AWS configuration and creates a Series.
func New(ctx context.Context, table, region string) (*Series, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewSeries(dynamodb.NewFromConfig(cfg), table), nil
}

// scalarAttr names the attribute of a scalar, e.g. "val/map_s1_s2".
func scalarAttr(phase, tag string) string {
	return phase + "/" + tag
}

func number(v float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

// Record implements tracking.Sink.
func (s *Series) Record(ctx context.Context, r tracking.EpochReport) error {
	item := map[string]types.AttributeValue{
		attrRun:    &types.AttributeValueMemberS{Value: r.Run},
		attrEpoch:  &types.AttributeValueMemberN{Value: strconv.Itoa(r.Epoch)},
		attrIsBest: &types.AttributeValueMemberBOOL{Value: r.IsBest},
	}
	for _, sc := range r.Scalars() {
		item[scalarAttr(sc.Phase, sc.Tag)] = number(sc.Value)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put epoch %d: %w", r.Epoch, err)
	}
	return nil
}

// Finish implements tracking.Finisher.
func (s *Series) Finish(ctx context.Context, sum tracking.Summary) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrRun:           &types.AttributeValueMemberS{Value: sum.Run},
			attrEpoch:         &types.AttributeValueMemberN{Value: strconv.Itoa(summaryEpoch)},
			"best_epoch":      &types.AttributeValueMemberN{Value: strconv.Itoa(sum.BestEpoch)},
			"best_score":      number(sum.BestScore),
			"epochs":          &types.AttributeValueMemberN{Value: strconv.Itoa(sum.Epochs)},
			"persisted":       &types.AttributeValueMemberBOOL{Value: sum.Persisted},
			"elapsed_seconds": number(sum.Elapsed.Seconds()),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put run summary: %w", err)
	}
	return nil
}

// Epoch is one stored epoch item.
type Epoch struct {
	Epoch   int
	IsBest  bool
	Scalars []tracking.Scalar
}

// Query returns the epochs of run in ascending order, following pagination.
// The summary item is skipped.
func (s *Series) Query(ctx context.Context, run string) ([]Epoch, error) {
	var (
		out   []Epoch
		start map[string]types.AttributeValue
	)
	for {
		resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("#run = :run AND #epoch >= :first"),
			ExpressionAttributeNames: map[string]string{
				"#run":   attrRun,
				"#epoch": attrEpoch,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":run":   &types.AttributeValueMemberS{Value: run},
				":first": &types.AttributeValueMemberN{Value: "0"},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range resp.Items {
			e, err := decodeEpoch(item)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return out, nil
		}
		start = resp.LastEvaluatedKey
	}
}

func decodeEpoch(item map[string]types.AttributeValue) (Epoch, error) {
	epochAttr, ok := item[attrEpoch].(*types.AttributeValueMemberN)
	if !ok {
		return Epoch{}, errors.New("invalid epoch attribute in DynamoDB")
	}
	epoch, err := strconv.Atoi(epochAttr.Value)
	if err != nil {
		return Epoch{}, fmt.Errorf("failed to parse epoch: %w", err)
	}

	e := Epoch{Epoch: epoch}
	if b, ok := item[attrIsBest].(*types.AttributeValueMemberBOOL); ok {
		e.IsBest = b.Value
	}
	for name, av := range item {
		phase, tag, ok := strings.Cut(name, "/")
		if !ok {
			continue
		}
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return Epoch{}, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		e.Scalars = append(e.Scalars, tracking.Scalar{Phase: phase, Tag: tag, Value: v})
	}
	return e, nil
}

package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

// API is the subset of the DynamoDB client used by the store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Options configure the DynamoDB store.
type Options struct {
	// Table is the name of the table. Its partition key must be the string
	// attribute "name".
	Table string

	// Region overrides the region from the default AWS configuration chain.
	Region string

	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// Store persists records in a DynamoDB table.
type Store struct {
	client API
	table  string
}

// Open loads the default AWS configuration and creates a *Store for the
// table in options.
func Open(ctx context.Context, options Options) (*Store, error) {
	if options.Table == "" {
		return nil, errors.New("dynamodb table name is empty")
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if options.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(options.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load AWS configuration")
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
	})

	return New(client, options.Table), nil
}

// New creates a *Store using client.
func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

// Get implements store.Interface.
func (s *Store) Get(ctx context.Context, name string) (*models.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key(name),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get item %q from table %s", name, s.table)
	}

	if out.Item == nil {
		return nil, models.ErrRecordNotFound
	}

	var record models.Record

	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal item %q", name)
	}

	return &record, nil
}

// Put implements store.Interface.
func (s *Store) Put(ctx context.Context, record *models.Record) error {
	// An empty value is a value and must not be stored as NULL; the encoder
	// stores an empty string as S:"" by default.
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal item %q", record.Name)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to put item %q into table %s", record.Name, s.table)
	}

	return nil
}

// Delete implements store.Interface.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       key(name),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete item %q from table %s", name, s.table)
	}

	return nil
}

// Close implements store.Interface.
func (s *Store) Close() error {
	return nil
}

func key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

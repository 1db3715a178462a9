package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfman30/referral-service/pkg/logging"
)

var (
	// ErrProfileNotFound indicates the requested patient id has no profile.
	ErrProfileNotFound = errors.New("patients: profile not found")

	// ErrProfileExists indicates a conditional create lost to a concurrent
	// first reference of the same patient id.
	ErrProfileExists = errors.New("patients: profile already exists")
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store persists patient profiles to DynamoDB.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("patients: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("patients: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Get fetches a profile by patient id.
func (s *Store) Get(ctx context.Context, patientID string) (*Profile, error) {
	if patientID == "" {
		return nil, errors.New("patients: patientID required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"patientId": &types.AttributeValueMemberS{Value: patientID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("patients: failed to fetch profile: %w", err)
	}
	if out.Item == nil {
		return nil, ErrProfileNotFound
	}

	var p Profile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("patients: failed to decode profile: %w", err)
	}
	return &p, nil
}

// Create inserts a new profile. The write is conditional on the patient id
// not existing yet, so two concurrent first references cannot clobber each
// other; the loser gets ErrProfileExists and should fall back to Update.
func (s *Store) Create(ctx context.Context, p *Profile) error {
	if p == nil {
		return errors.New("patients: profile cannot be nil")
	}
	if p.PatientID == "" {
		return errors.New("patients: patientID required")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	p.CreatedAt = now
	p.UpdatedAt = now

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("patients: failed to marshal profile: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(patientId)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrProfileExists
		}
		return fmt.Errorf("patients: failed to persist profile: %w", err)
	}
	return nil
}

// Update applies a partial update of only the changed fields. An empty
// changes map still touches updatedAt, which keeps re-submissions of an
// unchanged profile an idempotent no-op on the data fields.
func (s *Store) Update(ctx context.Context, patientID string, changes map[string]string) error {
	if patientID == "" {
		return errors.New("patients: patientID required")
	}

	// "name" is a DynamoDB reserved word, so every field goes through an
	// expression attribute alias.
	expr := "SET #updatedAt = :updatedAt"
	names := map[string]string{"#updatedAt": "updatedAt"}
	values := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}
	for field, value := range changes {
		alias := "#" + field
		placeholder := ":" + field
		expr += fmt.Sprintf(", %s = %s", alias, placeholder)
		names[alias] = field
		values[placeholder] = &types.AttributeValueMemberS{Value: value}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"patientId": &types.AttributeValueMemberS{Value: patientID},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(patientId)"),
	})
	if err != nil {
		return fmt.Errorf("patients: failed to update profile %s: %w", patientID, err)
	}
	return nil
}

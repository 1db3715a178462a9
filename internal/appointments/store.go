package appointments

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

// ErrAppointmentExists indicates an appointment id collision on create.
// Ids carry a UUID so this only happens when a caller reuses an id.
var ErrAppointmentExists = errors.New("appointments: appointment already exists")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store persists appointment records to DynamoDB. Appointments are
// write-once: the referral workflow never updates them after creation.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store backed by the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("appointments: table name cannot be empty")
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

// Create inserts a new appointment record, stamping the server timestamp.
// The conditional write enforces the write-once contract.
func (s *Store) Create(ctx context.Context, appt *Appointment) error {
	if appt == nil {
		return errors.New("appointments: appointment cannot be nil")
	}
	if appt.AppointmentID == "" {
		return errors.New("appointments: appointmentID required")
	}
	appt.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return fmt.Errorf("appointments: failed to marshal appointment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(appointmentId)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrAppointmentExists
		}
		return fmt.Errorf("appointments: failed to persist appointment: %w", err)
	}
	return nil
}

// ListByPatientAndType returns all appointments for a patient with the given
// type tag. The table has no composite index over (patientId, type), so this
// is a filtered scan and callers sort the results themselves.
func (s *Store) ListByPatientAndType(ctx context.Context, patientID, typeTag string) ([]Appointment, error) {
	if patientID == "" {
		return nil, errors.New("appointments: patientID required")
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("patientId = :patientId AND #type = :type"),
		ExpressionAttributeNames: map[string]string{
			"#type": "type",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":patientId": &types.AttributeValueMemberS{Value: patientID},
			":type":      &types.AttributeValueMemberS{Value: typeTag},
		},
	}

	var appts []Appointment
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("appointments: failed to scan appointments: %w", err)
		}

		var page []Appointment
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("appointments: failed to decode appointments: %w", err)
		}
		appts = append(appts, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return appts, nil
}

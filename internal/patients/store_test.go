package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfman30/referral-service/pkg/logging"
)

type mockDynamo struct {
	getOutput    *dynamodb.GetItemOutput
	getErr       error
	putInput     *dynamodb.PutItemInput
	putErr       error
	updateInputs []*dynamodb.UpdateItemInput
	updateErr    error
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOutput != nil {
		return m.getOutput, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func TestStore_GetNotFound(t *testing.T) {
	store := NewStore(&mockDynamo{}, "refer_special_patient_profiles", logging.Default())

	_, err := store.Get(context.Background(), "patient-1")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestStore_GetDecodesProfile(t *testing.T) {
	item, err := attributevalue.MarshalMap(&Profile{
		PatientID: "patient-1",
		Name:      "Jane Roe",
		Email:     "jane@example.com",
	})
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	store := NewStore(&mockDynamo{getOutput: &dynamodb.GetItemOutput{Item: item}}, "t", logging.Default())

	p, err := store.Get(context.Background(), "patient-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if p.Name != "Jane Roe" || p.Email != "jane@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestStore_CreateIsConditional(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "t", logging.Default())

	p := &Profile{PatientID: "patient-1", Name: "Jane Roe"}
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(patientId)" {
		t.Fatalf("expected condition expression to prevent overwrites, got %v", expr)
	}

	var stored Profile
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored profile: %v", err)
	}
	if stored.CreatedAt == "" || stored.UpdatedAt == "" {
		t.Fatal("expected timestamps to be populated")
	}
	if _, err := time.Parse(time.RFC3339Nano, stored.CreatedAt); err != nil {
		t.Fatalf("createdAt is not RFC3339Nano: %v", err)
	}
}

func TestStore_CreateLostRace(t *testing.T) {
	mock := &mockDynamo{putErr: &types.ConditionalCheckFailedException{}}
	store := NewStore(mock, "t", logging.Default())

	err := store.Create(context.Background(), &Profile{PatientID: "patient-1"})
	if !errors.Is(err, ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestStore_UpdateChangedFieldsOnly(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "t", logging.Default())

	err := store.Update(context.Background(), "patient-1", map[string]string{"name": "Jane R. Roe"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(mock.updateInputs))
	}
	update := mock.updateInputs[0]

	if update.ExpressionAttributeNames["#name"] != "name" {
		t.Fatalf("expected reserved attribute name aliasing, got %v", update.ExpressionAttributeNames)
	}
	name := update.ExpressionAttributeValues[":name"].(*types.AttributeValueMemberS).Value
	if name != "Jane R. Roe" {
		t.Fatalf("expected new name in update values, got %s", name)
	}
	if expr := update.ConditionExpression; expr == nil || *expr != "attribute_exists(patientId)" {
		t.Fatalf("expected update to require an existing profile, got %v", expr)
	}
}

func TestStore_UpdateNoChangesTouchesTimestampOnly(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "t", logging.Default())

	if err := store.Update(context.Background(), "patient-1", nil); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	update := mock.updateInputs[0]
	if got := *update.UpdateExpression; got != "SET #updatedAt = :updatedAt" {
		t.Fatalf("expected timestamp-only expression, got %q", got)
	}
	if len(update.ExpressionAttributeValues) != 1 {
		t.Fatalf("expected exactly one value binding, got %v", update.ExpressionAttributeValues)
	}
}

package appointments

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/wolfman30/referral-service/pkg/logging"
)

type mockDynamo struct {
	putInput    *dynamodb.PutItemInput
	putErr      error
	scanInputs  []*dynamodb.ScanInput
	scanOutputs []*dynamodb.ScanOutput
	scanErr     error
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanInputs = append(m.scanInputs, in)
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	if len(m.scanOutputs) == 0 {
		return &dynamodb.ScanOutput{}, nil
	}
	out := m.scanOutputs[0]
	m.scanOutputs = m.scanOutputs[1:]
	return out, nil
}

func marshalAppt(t *testing.T, appt Appointment) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		t.Fatalf("failed to marshal appointment fixture: %v", err)
	}
	return item
}

func TestStore_CreateIsWriteOnce(t *testing.T) {
	mock := &mockDynamo{}
	store := NewStore(mock, "refer_special_appointments", logging.Default())

	appt := &Appointment{
		AppointmentID: "apt-patient1-abc",
		PatientID:     "patient-1",
		Type:          TypeSpecialist,
		Date:          "2026-09-12",
		Time:          "10:00",
	}
	if err := store.Create(context.Background(), appt); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(appointmentId)" {
		t.Fatalf("expected write-once condition expression, got %v", expr)
	}

	var stored Appointment
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored appointment: %v", err)
	}
	if stored.CreatedAt == "" {
		t.Fatal("expected server timestamp to be stamped")
	}
	if stored.Type != TypeSpecialist {
		t.Fatalf("expected Specialist type tag, got %s", stored.Type)
	}
}

func TestStore_CreateIDCollision(t *testing.T) {
	mock := &mockDynamo{putErr: &types.ConditionalCheckFailedException{}}
	store := NewStore(mock, "t", logging.Default())

	err := store.Create(context.Background(), &Appointment{AppointmentID: "apt-1"})
	if !errors.Is(err, ErrAppointmentExists) {
		t.Fatalf("expected ErrAppointmentExists, got %v", err)
	}
}

func TestStore_ListByPatientAndTypeFilters(t *testing.T) {
	mock := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{
				Items: []map[string]types.AttributeValue{
					marshalAppt(t, Appointment{AppointmentID: "apt-1", PatientID: "patient-1", Type: TypeGeneralPractice}),
				},
			},
		},
	}
	store := NewStore(mock, "t", logging.Default())

	appts, err := store.ListByPatientAndType(context.Background(), "patient-1", TypeGeneralPractice)
	if err != nil {
		t.Fatalf("ListByPatientAndType returned error: %v", err)
	}
	if len(appts) != 1 || appts[0].AppointmentID != "apt-1" {
		t.Fatalf("unexpected appointments: %+v", appts)
	}

	scan := mock.scanInputs[0]
	if *scan.FilterExpression != "patientId = :patientId AND #type = :type" {
		t.Fatalf("unexpected filter expression: %s", *scan.FilterExpression)
	}
	if scan.ExpressionAttributeNames["#type"] != "type" {
		t.Fatalf("expected reserved word aliasing for type, got %v", scan.ExpressionAttributeNames)
	}
	typeValue := scan.ExpressionAttributeValues[":type"].(*types.AttributeValueMemberS).Value
	if typeValue != TypeGeneralPractice {
		t.Fatalf("expected General Practice filter, got %s", typeValue)
	}
}

func TestStore_ListByPatientAndTypePaginates(t *testing.T) {
	lastKey := map[string]types.AttributeValue{
		"appointmentId": &types.AttributeValueMemberS{Value: "apt-1"},
	}
	mock := &mockDynamo{
		scanOutputs: []*dynamodb.ScanOutput{
			{
				Items: []map[string]types.AttributeValue{
					marshalAppt(t, Appointment{AppointmentID: "apt-1", PatientID: "patient-1", Type: TypeGeneralPractice}),
				},
				LastEvaluatedKey: lastKey,
			},
			{
				Items: []map[string]types.AttributeValue{
					marshalAppt(t, Appointment{AppointmentID: "apt-2", PatientID: "patient-1", Type: TypeGeneralPractice}),
				},
			},
		},
	}
	store := NewStore(mock, "t", logging.Default())

	appts, err := store.ListByPatientAndType(context.Background(), "patient-1", TypeGeneralPractice)
	if err != nil {
		t.Fatalf("ListByPatientAndType returned error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected both pages collected, got %d records", len(appts))
	}
	if len(mock.scanInputs) != 2 {
		t.Fatalf("expected 2 scan calls, got %d", len(mock.scanInputs))
	}
	if mock.scanInputs[1].ExclusiveStartKey == nil {
		t.Fatal("expected second scan to resume from LastEvaluatedKey")
	}
}

package patients

// Profile is the persisted patient record. At most one profile exists per
// patient id; profiles are created on first reference and never deleted by
// the referral workflow.
type Profile struct {
	PatientID string `dynamodbav:"patientId" json:"patient_id"`
	Name      string `dynamodbav:"name" json:"name"`
	Email     string `dynamodbav:"email,omitempty" json:"email,omitempty"`
	CreatedAt string `dynamodbav:"createdAt" json:"created_at"`
	UpdatedAt string `dynamodbav:"updatedAt" json:"updated_at"`
}

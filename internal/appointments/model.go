package appointments

// Appointment type tags. The referral workflow only writes Specialist
// records; General Practice records are written by the practice scheduler
// and read here for the doctor-history lookup.
const (
	TypeSpecialist      = "Specialist"
	TypeGeneralPractice = "General Practice"
)

// Appointment is the write-once record of a booked referral. The patient
// name/email are a snapshot taken at booking time; the patientId references
// a profile by value only, with no referential-integrity enforcement.
type Appointment struct {
	AppointmentID       string  `dynamodbav:"appointmentId" json:"appointment_id"`
	PatientID           string  `dynamodbav:"patientId" json:"patient_id"`
	Type                string  `dynamodbav:"type" json:"type"`
	Date                string  `dynamodbav:"date" json:"date"`
	Time                string  `dynamodbav:"time" json:"time"`
	Symptoms            string  `dynamodbav:"symptoms,omitempty" json:"symptoms,omitempty"`
	DurationValue       float64 `dynamodbav:"durationValue,omitempty" json:"duration_value,omitempty"`
	DurationUnit        string  `dynamodbav:"durationUnit,omitempty" json:"duration_unit,omitempty"`
	PatientName         string  `dynamodbav:"patientName,omitempty" json:"patient_name,omitempty"`
	PatientEmail        string  `dynamodbav:"patientEmail,omitempty" json:"patient_email,omitempty"`
	SpecialistEmail     string  `dynamodbav:"specialistEmail,omitempty" json:"specialist_email,omitempty"`
	ReferringDoctor     string  `dynamodbav:"referringDoctor,omitempty" json:"referring_doctor,omitempty"`
	DoctorName          string  `dynamodbav:"doctorName,omitempty" json:"doctor_name,omitempty"`
	TreatmentDetails    string  `dynamodbav:"treatmentDetails,omitempty" json:"treatment_details,omitempty"`
	Urgent              bool    `dynamodbav:"urgent" json:"urgent"`
	SpecialistEmailSent bool    `dynamodbav:"specialistEmailSent" json:"specialist_email_sent"`
	PatientEmailSent    bool    `dynamodbav:"patientEmailSent" json:"patient_email_sent"`
	CreatedAt           string  `dynamodbav:"createdAt" json:"created_at"`
}

package referral

import "strings"

// Duration unit values accepted from the agent.
const (
	UnitDays   = "days"
	UnitWeeks  = "weeks"
	UnitMonths = "months"
)

// Duration is the caller's symptom-duration pair used to pick the slot tier.
type Duration struct {
	Value float64
	Unit  string
}

// Request carries the caller-supplied referral fields after extraction.
// Immutable once built.
type Request struct {
	PatientID        string
	PatientName      string
	Symptoms         string
	TreatmentDetails string
	Urgent           bool
	Duration         *Duration
	SpecialistEmail  string
	ReferringDoctor  string
}

// requestFromPayload normalizes an arbitrary JSON object into a Request.
// defaultDoctor is the deployment-fixed referring doctor, used when the
// agent omits the field.
func requestFromPayload(payload map[string]any, defaultDoctor string) Request {
	req := Request{
		PatientID:        strings.TrimSpace(extractString(payload, "patient_id", "")),
		PatientName:      strings.TrimSpace(extractString(payload, "patient_name", "")),
		Symptoms:         strings.TrimSpace(extractString(payload, "symptoms", "")),
		TreatmentDetails: strings.TrimSpace(extractString(payload, "treatment_details", "")),
		Urgent:           extractBool(payload, "urgent", false),
		SpecialistEmail:  strings.TrimSpace(extractString(payload, "recipient_email", "")),
		ReferringDoctor:  strings.TrimSpace(extractString(payload, "referring_doctor", defaultDoctor)),
	}

	value, hasValue := extractFloat(payload, "duration_value")
	unit := strings.ToLower(strings.TrimSpace(extractString(payload, "duration_unit", "")))
	if hasValue || unit != "" {
		req.Duration = &Duration{Value: value, Unit: unit}
	}
	return req
}

// validate checks the required fields and the specialist address format.
// All fatal validation runs before any store write.
func (r Request) validate() error {
	if r.PatientName == "" {
		return newValidationError("patient_name is required")
	}
	if r.TreatmentDetails == "" {
		return newValidationError("treatment_details is required")
	}
	if r.ReferringDoctor == "" {
		return newValidationError("referring_doctor is required and no deployment default is configured")
	}
	if r.SpecialistEmail == "" {
		return newValidationError("recipient_email is required")
	}
	if !ValidEmail(r.SpecialistEmail) {
		return newValidationError("recipient_email %q is not a valid email address", r.SpecialistEmail)
	}
	return nil
}

// SubmitResponse is the structured outcome of one referral submission.
// Success is the best-effort-but-transparent flag: it is true only when both
// emails went out and the appointment record persisted.
type SubmitResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	Date                string `json:"appointment_date,omitempty"`
	Time                string `json:"appointment_time,omitempty"`
	AppointmentID       string `json:"appointment_id,omitempty"`
	SpecialistEmailSent bool   `json:"specialist_email_sent"`
	PatientEmailSent    bool   `json:"patient_email_sent"`
	Recorded            bool   `json:"appointment_recorded"`
	PatientEmail        string `json:"patient_email,omitempty"`
}

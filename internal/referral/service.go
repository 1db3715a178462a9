package referral

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/referral-service/internal/appointments"
	"github.com/wolfman30/referral-service/internal/observability/metrics"
	"github.com/wolfman30/referral-service/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var referralTracer = otel.Tracer("referral.internal.referral")

// AppointmentStore is the slice of the appointments store the service needs.
type AppointmentStore interface {
	Create(ctx context.Context, appt *appointments.Appointment) error
	ListByPatientAndType(ctx context.Context, patientID, typeTag string) ([]appointments.Appointment, error)
}

// Service orchestrates the referral workflow: extract, validate, resolve
// identity, schedule, notify both recipients, record. One linear pipeline
// per request; nothing is retried and nothing is rolled back.
type Service struct {
	resolver      *Resolver
	dispatcher    *Dispatcher
	appts         AppointmentStore
	metrics       *metrics.ReferralMetrics
	logger        *logging.Logger
	defaultDoctor string
	now           func() time.Time
}

// ServiceDeps bundles the service's collaborators.
type ServiceDeps struct {
	Resolver        *Resolver
	Dispatcher      *Dispatcher
	Appointments    AppointmentStore
	Metrics         *metrics.ReferralMetrics
	Logger          *logging.Logger
	ReferringDoctor string
}

// NewService creates the orchestrator.
func NewService(deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		resolver:      deps.Resolver,
		dispatcher:    deps.Dispatcher,
		appts:         deps.Appointments,
		metrics:       deps.Metrics,
		logger:        logger,
		defaultDoctor: deps.ReferringDoctor,
		now:           time.Now,
	}
}

// Submit processes one referral. The returned error is always a
// ValidationError; every other failure is soft and reflected only in the
// response's status flags. Soft failures never abort the pipeline: the
// appointment is recorded regardless of email outcomes, and the response
// reports exactly what happened.
func (s *Service) Submit(ctx context.Context, payload map[string]any) (*SubmitResponse, error) {
	ctx, span := referralTracer.Start(ctx, "referral.submit")
	defer span.End()

	started := time.Now()

	req := requestFromPayload(payload, s.defaultDoctor)
	if err := req.validate(); err != nil {
		s.metrics.ObserveSubmit("rejected", time.Since(started).Seconds())
		span.RecordError(err)
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, req.PatientID, req.PatientName)
	if err != nil {
		s.metrics.ObserveSubmit("rejected", time.Since(started).Seconds())
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("referral.patient_id", res.PatientID))

	// All fatal validation has passed; the profile upsert is the first side
	// effect, so a rejected request leaves no partial writes behind.
	if err := s.resolver.Persist(ctx, res, req.PatientName); err != nil {
		s.logger.Error("profile upsert failed", "error", err, "patient_id", res.PatientID)
		span.RecordError(err)
	}

	slot := AssignSlot(s.now(), req.Duration)
	apptID := newAppointmentID(res.PatientID)

	specSent, specDetail := s.dispatcher.Dispatch(ctx, specialistMessage(req, res.PatientID, res.Name, slot, apptID))
	s.metrics.ObserveEmail("specialist", emailStatus(specSent))

	patientSent := false
	patientDetail := "no patient email on file"
	switch {
	case res.Email == "":
		s.metrics.ObserveEmail("patient", "skipped")
	case !ValidEmail(res.Email):
		// A malformed stored address skips the send; it is reported only
		// through the status flag, never as a request failure.
		patientDetail = "patient email on file is malformed"
		s.logger.Warn("skipping patient confirmation", "patient_id", res.PatientID, "reason", patientDetail)
		s.metrics.ObserveEmail("patient", "skipped")
	default:
		patientSent, patientDetail = s.dispatcher.Dispatch(ctx, patientMessage(req, res.Email, res.Name, slot, apptID))
		s.metrics.ObserveEmail("patient", emailStatus(patientSent))
	}

	// Recording is unconditional: a booked slot must survive even when both
	// emails failed.
	recorded := true
	err = s.appts.Create(ctx, &appointments.Appointment{
		AppointmentID:       apptID,
		PatientID:           res.PatientID,
		Type:                appointments.TypeSpecialist,
		Date:                slot.Date,
		Time:                slot.Time,
		Symptoms:            req.Symptoms,
		DurationValue:       durationValue(req.Duration),
		DurationUnit:        durationUnit(req.Duration),
		PatientName:         res.Name,
		PatientEmail:        res.Email,
		SpecialistEmail:     req.SpecialistEmail,
		ReferringDoctor:     req.ReferringDoctor,
		TreatmentDetails:    req.TreatmentDetails,
		Urgent:              req.Urgent,
		SpecialistEmailSent: specSent,
		PatientEmailSent:    patientSent,
	})
	if err != nil {
		recorded = false
		s.metrics.ObserveRecordFailure()
		s.logger.Error("appointment record failed", "error", err, "appointment_id", apptID)
		span.RecordError(err)
	}

	success := specSent && patientSent && recorded
	span.SetAttributes(
		attribute.String("referral.appointment_id", apptID),
		attribute.Bool("referral.specialist_sent", specSent),
		attribute.Bool("referral.patient_sent", patientSent),
		attribute.Bool("referral.recorded", recorded),
		attribute.Bool("referral.success", success),
	)
	outcome := "booked"
	if !success {
		outcome = "partial"
	}
	s.metrics.ObserveSubmit(outcome, time.Since(started).Seconds())

	resp := &SubmitResponse{
		Success:             success,
		Message:             buildMessage(res.Name, req.SpecialistEmail, success, specSent, specDetail, patientSent, patientDetail, recorded),
		Date:                slot.Date,
		Time:                slot.Time,
		AppointmentID:       apptID,
		SpecialistEmailSent: specSent,
		PatientEmailSent:    patientSent,
		Recorded:            recorded,
		PatientEmail:        res.Email,
	}
	s.logger.Info("referral processed",
		"appointment_id", apptID,
		"patient_id", res.PatientID,
		"success", success,
		"specialist_sent", specSent,
		"patient_sent", patientSent,
		"recorded", recorded,
	)
	return resp, nil
}

// LastGPDoctor returns the most recent general-practice doctor seen by the
// patient. The store cannot order on (patientId, type) without a composite
// index, so results are sorted client-side by record timestamp.
func (s *Service) LastGPDoctor(ctx context.Context, patientID string) (string, error) {
	ctx, span := referralTracer.Start(ctx, "referral.gp_doctor")
	defer span.End()
	span.SetAttributes(attribute.String("referral.patient_id", patientID))

	appts, err := s.appts.ListByPatientAndType(ctx, patientID, appointments.TypeGeneralPractice)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("referral: list general practice history: %w", err)
	}

	// RFC3339Nano drops trailing fractional zeros, so raw string order
	// misranks same-second records. Compare parsed instants instead.
	sort.Slice(appts, func(i, j int) bool {
		return recordInstant(appts[i].CreatedAt).After(recordInstant(appts[j].CreatedAt))
	})

	for _, a := range appts {
		if a.DoctorName != "" {
			return a.DoctorName, nil
		}
		if a.ReferringDoctor != "" {
			return a.ReferringDoctor, nil
		}
	}
	return "", ErrNoDoctorFound
}

// recordInstant parses a stored record timestamp. Unparseable values sort
// last, after every well-formed record.
func recordInstant(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Appointment ids keep a short patient fragment for log readability; the
// UUID suffix carries the collision resistance.
func newAppointmentID(patientID string) string {
	frag := patientID
	if len(frag) > 8 {
		frag = frag[:8]
	}
	return fmt.Sprintf("apt-%s-%s", frag, uuid.NewString())
}

func buildMessage(patientName, specialistEmail string, success, specSent bool, specDetail string, patientSent bool, patientDetail string, recorded bool) string {
	if success {
		return fmt.Sprintf("Referral email for %s sent to %s and appointment confirmed.", patientName, specialistEmail)
	}

	var issues []string
	if !specSent {
		issues = append(issues, "specialist email: "+specDetail)
	}
	if !patientSent {
		issues = append(issues, "patient email: "+patientDetail)
	}
	if !recorded {
		issues = append(issues, "appointment record: persistence failed")
	}
	return fmt.Sprintf("Referral for %s processed with issues: %s", patientName, strings.Join(issues, "; "))
}

func emailStatus(sent bool) string {
	if sent {
		return "sent"
	}
	return "failed"
}

func durationValue(d *Duration) float64 {
	if d == nil {
		return 0
	}
	return d.Value
}

func durationUnit(d *Duration) string {
	if d == nil {
		return ""
	}
	return d.Unit
}

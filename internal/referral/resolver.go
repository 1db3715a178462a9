package referral

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/wolfman30/referral-service/internal/patients"
	"github.com/wolfman30/referral-service/pkg/logging"
)

// The agent sends this sentinel when it could not collect a patient id.
const unknownPatientID = "unknown"

// ProfileStore is the slice of the patients store the resolver needs.
type ProfileStore interface {
	Get(ctx context.Context, patientID string) (*patients.Profile, error)
	Create(ctx context.Context, p *patients.Profile) error
	Update(ctx context.Context, patientID string, changes map[string]string) error
}

// Resolution is the reconciled patient identity used downstream.
type Resolution struct {
	PatientID string
	Name      string
	Email     string

	existed    bool
	storedName string
}

// Resolver finds, creates, or reconciles patient profiles.
type Resolver struct {
	store  ProfileStore
	logger *logging.Logger
}

// NewResolver creates a resolver over the given profile store.
func NewResolver(store ProfileStore, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve reconciles the caller-supplied identity against the profile store.
// It performs no writes; Persist applies the upsert once all request
// validation has passed. A name that contradicts the stored profile fails
// the whole operation so the wrong patient is never silently referred.
func (r *Resolver) Resolve(ctx context.Context, patientID, requestName string) (*Resolution, error) {
	id := strings.TrimSpace(patientID)
	if id == "" || strings.EqualFold(id, unknownPatientID) {
		return &Resolution{PatientID: uuid.NewString(), Name: requestName}, nil
	}

	p, err := r.store.Get(ctx, id)
	if errors.Is(err, patients.ErrProfileNotFound) {
		// Unknown but concrete id: keep it rather than regenerating, so the
		// caller's reference stays stable.
		return &Resolution{PatientID: id, Name: requestName}, nil
	}
	if err != nil {
		// Store outage degrades to the new-patient path so the referral can
		// still go out; Persist reports the same outage as a soft failure.
		r.logger.Error("patient profile lookup failed", "error", err, "patient_id", id)
		return &Resolution{PatientID: id, Name: requestName}, nil
	}

	if requestName != "" && p.Name != "" && !strings.EqualFold(strings.TrimSpace(requestName), strings.TrimSpace(p.Name)) {
		return nil, newValidationError("patient name %q does not match the stored name %q for patient id %s", requestName, p.Name, id)
	}

	name := p.Name
	if name == "" {
		name = requestName
	}
	return &Resolution{
		PatientID:  id,
		Name:       name,
		Email:      p.Email,
		existed:    true,
		storedName: p.Name,
	}, nil
}

// Persist upserts the reconciled profile: create on first reference, partial
// update of only the changed fields otherwise. The request name wins the
// write when supplied. Losing the create race to a concurrent request falls
// back to the update path (last write wins on the data fields).
func (r *Resolver) Persist(ctx context.Context, res *Resolution, requestName string) error {
	if !res.existed {
		name := requestName
		if name == "" {
			name = res.Name
		}
		err := r.store.Create(ctx, &patients.Profile{
			PatientID: res.PatientID,
			Name:      name,
			Email:     res.Email,
		})
		if !errors.Is(err, patients.ErrProfileExists) {
			return err
		}
		r.logger.Warn("lost profile create race, falling back to update", "patient_id", res.PatientID)
	}

	changes := map[string]string{}
	if requestName != "" && requestName != res.storedName {
		changes["name"] = requestName
	}
	return r.store.Update(ctx, res.PatientID, changes)
}

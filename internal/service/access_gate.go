package service

import (
	"context"
	"fmt"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/repository"
)

// AccessGate resolves which patient's data a caller may act on. Patients
// act for themselves only; doctors act for their assigned patients only.
type AccessGate struct {
	patients repository.PatientRepository
}

// NewAccessGate creates a new access gate
func NewAccessGate(patients repository.PatientRepository) *AccessGate {
	return &AccessGate{patients: patients}
}

// ResolveTarget returns the patient the caller may act on.
//
// A patient caller always targets itself; requestedEmail is ignored. A
// doctor caller must name a patient and hold an active assignment to them.
func (g *AccessGate) ResolveTarget(ctx context.Context, caller domain.Caller, requestedEmail string) (*domain.Patient, error) {
	switch caller.Role {
	case domain.RolePatient:
		return g.patients.GetByEmail(ctx, caller.Email)

	case domain.RoleDoctor:
		if requestedEmail == "" {
			return nil, fmt.Errorf("patient email is required for doctor callers: %w", ErrMissingParameter)
		}

		patient, err := g.patients.GetByEmail(ctx, requestedEmail)
		if err != nil {
			return nil, err
		}

		if patient.DoctorEmail == nil || *patient.DoctorEmail != caller.Email {
			return nil, fmt.Errorf("patient %s is not assigned to doctor %s: %w", patient.Email, caller.Email, ErrForbidden)
		}

		return patient, nil

	default:
		return nil, fmt.Errorf("role %q may not access patient data: %w", caller.Role, ErrForbidden)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/repository"
)

// assignmentService implements AssignmentService
type assignmentService struct {
	patients    repository.PatientRepository
	doctors     repository.DoctorRepository
	assignments repository.AssignmentRepository
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	assignments repository.AssignmentRepository,
) AssignmentService {
	return &assignmentService{
		patients:    patients,
		doctors:     doctors,
		assignments: assignments,
	}
}

// ListDoctors returns the doctor directory
func (s *assignmentService) ListDoctors(ctx context.Context) ([]*domain.Doctor, error) {
	return s.doctors.List(ctx)
}

// RequestAssignment files a pending request from a patient to a doctor. The
// doctor must exist; the patient must not already be assigned.
func (s *assignmentService) RequestAssignment(ctx context.Context, patientEmail, doctorEmail string) (*domain.AssignmentRequest, error) {
	patient, err := s.patients.GetByEmail(ctx, patientEmail)
	if err != nil {
		return nil, err
	}
	if patient.DoctorEmail != nil {
		return nil, fmt.Errorf("patient %s is already assigned to a doctor: %w", patientEmail, ErrForbidden)
	}

	doctor, err := s.doctors.GetByEmail(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	req := &domain.AssignmentRequest{
		PatientEmail: patient.Email,
		DoctorEmail:  doctor.Email,
		Status:       domain.RequestPending,
	}
	if err := s.assignments.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create assignment request: %w", err)
	}

	return req, nil
}

// PendingRequests lists a doctor's pending requests with patient names resolved
func (s *assignmentService) PendingRequests(ctx context.Context, doctorEmail string) ([]dto.PendingRequestInfo, error) {
	requests, err := s.assignments.ListPendingByDoctor(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	infos := make([]dto.PendingRequestInfo, 0, len(requests))
	for _, req := range requests {
		info := dto.PendingRequestInfo{
			ID:           req.ID,
			PatientEmail: req.PatientEmail,
		}
		if patient, err := s.patients.GetByEmail(ctx, req.PatientEmail); err == nil {
			info.PatientName = patient.FullName
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// Respond accepts or rejects a pending request. Only the addressed doctor may
// respond, and only while the request is still pending.
func (s *assignmentService) Respond(ctx context.Context, doctorEmail, requestID, action string) error {
	req, err := s.assignments.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.DoctorEmail != doctorEmail {
		return fmt.Errorf("request %s is not addressed to doctor %s: %w", requestID, doctorEmail, ErrForbidden)
	}

	switch action {
	case "accept":
		err = s.assignments.Accept(ctx, requestID)
	case "reject":
		err = s.assignments.Reject(ctx, requestID)
	default:
		return fmt.Errorf("unknown action %q: %w", action, ErrMissingParameter)
	}

	if err != nil {
		if errors.Is(err, repository.ErrRequestProcessed) {
			return fmt.Errorf("request %s was already processed: %w", requestID, ErrForbidden)
		}
		return err
	}

	return nil
}

// ListPatients returns the patients assigned to a doctor
func (s *assignmentService) ListPatients(ctx context.Context, doctorEmail string) ([]*domain.Patient, error) {
	return s.patients.ListByDoctor(ctx, doctorEmail)
}

// Unassign breaks an active assignment. A patient detaches from their own
// doctor; a doctor detaches one of their assigned patients.
func (s *assignmentService) Unassign(ctx context.Context, caller domain.Caller, patientEmail string) error {
	switch caller.Role {
	case domain.RolePatient:
		patientEmail = caller.Email
	case domain.RoleDoctor:
		if patientEmail == "" {
			return fmt.Errorf("patient email is required for doctor callers: %w", ErrMissingParameter)
		}
		patient, err := s.patients.GetByEmail(ctx, patientEmail)
		if err != nil {
			return err
		}
		if patient.DoctorEmail == nil || *patient.DoctorEmail != caller.Email {
			return fmt.Errorf("patient %s is not assigned to doctor %s: %w", patientEmail, caller.Email, ErrForbidden)
		}
	default:
		return fmt.Errorf("role %q may not manage assignments: %w", caller.Role, ErrForbidden)
	}

	return s.patients.AssignDoctor(ctx, patientEmail, nil)
}

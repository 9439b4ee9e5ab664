package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/pkg/database"
)

// assignmentRepository implements AssignmentRepository interface
type assignmentRepository struct {
	db *database.Postgres
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.Postgres) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Create creates a new pending assignment request
func (r *assignmentRepository) Create(ctx context.Context, req *domain.AssignmentRequest) error {
	query := `
		INSERT INTO assignment_requests (id, patient_email, doctor_email, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = domain.RequestPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		req.ID,
		req.PatientEmail,
		req.DoctorEmail,
		req.Status,
		req.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create assignment request: %w", err)
	}

	return nil
}

// GetByID retrieves an assignment request by ID
func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.AssignmentRequest, error) {
	query := `
		SELECT id, patient_email, doctor_email, status, created_at
		FROM assignment_requests
		WHERE id = $1
	`

	req := &domain.AssignmentRequest{}

	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.PatientEmail,
		&req.DoctorEmail,
		&req.Status,
		&req.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment request %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment request: %w", err)
	}

	return req, nil
}

// ListPendingByDoctor retrieves all pending requests addressed to a doctor
func (r *assignmentRepository) ListPendingByDoctor(ctx context.Context, doctorEmail string) ([]*domain.AssignmentRequest, error) {
	query := `
		SELECT id, patient_email, doctor_email, status, created_at
		FROM assignment_requests
		WHERE doctor_email = $1 AND status = $2
		ORDER BY created_at
	`

	rows, err := r.db.DB.QueryContext(ctx, query, doctorEmail, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.AssignmentRequest
	for rows.Next() {
		req := &domain.AssignmentRequest{}

		err := rows.Scan(
			&req.ID,
			&req.PatientEmail,
			&req.DoctorEmail,
			&req.Status,
			&req.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment request: %w", err)
		}

		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignment requests: %w", err)
	}

	return requests, nil
}

// Accept marks a pending request accepted and assigns the patient to the
// doctor in one transaction. ErrRequestProcessed is returned when the
// request is no longer pending.
func (r *assignmentRepository) Accept(ctx context.Context, id string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var patientEmail, doctorEmail string
	err = tx.QueryRowContext(ctx, `
		UPDATE assignment_requests
		SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING patient_email, doctor_email
	`, id, domain.RequestAccepted, domain.RequestPending).Scan(&patientEmail, &doctorEmail)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.classifyMissingUpdate(ctx, id)
		}
		return fmt.Errorf("failed to accept assignment request: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE patients SET doctor_email = $2 WHERE email = $1`, patientEmail, doctorEmail)
	if err != nil {
		return fmt.Errorf("failed to assign patient to doctor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit acceptance: %w", err)
	}

	return nil
}

// Reject marks a pending request rejected
func (r *assignmentRepository) Reject(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `
		UPDATE assignment_requests
		SET status = $2
		WHERE id = $1 AND status = $3
	`, id, domain.RequestRejected, domain.RequestPending)
	if err != nil {
		return fmt.Errorf("failed to reject assignment request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return r.classifyMissingUpdate(ctx, id)
	}

	return nil
}

// classifyMissingUpdate distinguishes a missing request from one already
// processed when a guarded status update matched no rows
func (r *assignmentRepository) classifyMissingUpdate(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("assignment request %s: %w", id, ErrRequestProcessed)
}

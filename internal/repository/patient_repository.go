package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/pkg/database"
)

// patientRepository implements PatientRepository interface
type patientRepository struct {
	db *database.Postgres
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *database.Postgres) PatientRepository {
	return &patientRepository{db: db}
}

// Create creates a new patient in the database
func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	query := `
		INSERT INTO patients (email, first_name, last_name, full_name, password_hash, auth_method, doctor_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = time.Now()
	}
	if patient.AuthMethod == "" {
		patient.AuthMethod = domain.AuthMethodManual
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		patient.Email,
		patient.FirstName,
		patient.LastName,
		patient.FullName,
		patient.PasswordHash,
		patient.AuthMethod,
		patient.DoctorEmail,
		patient.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("patient with email %s already exists: %w", patient.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}

	return nil
}

// GetByEmail retrieves a patient by email
func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	query := `
		SELECT email, first_name, last_name, full_name, password_hash, auth_method, doctor_email, created_at
		FROM patients
		WHERE email = $1
	`

	patient := &domain.Patient{}
	var doctorEmail sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, email).Scan(
		&patient.Email,
		&patient.FirstName,
		&patient.LastName,
		&patient.FullName,
		&patient.PasswordHash,
		&patient.AuthMethod,
		&doctorEmail,
		&patient.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient by email: %w", err)
	}

	if doctorEmail.Valid {
		patient.DoctorEmail = &doctorEmail.String
	}

	return patient, nil
}

// SetAuthMethod updates the auth method of an existing patient
func (r *patientRepository) SetAuthMethod(ctx context.Context, email string, method domain.AuthMethod) error {
	query := `
		UPDATE patients
		SET auth_method = $2
		WHERE email = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, email, method)
	if err != nil {
		return fmt.Errorf("failed to update auth method: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("patient with email %s not found: %w", email, ErrNotFound)
	}

	return nil
}

// AssignDoctor sets or clears (nil) the patient's assigned doctor
func (r *patientRepository) AssignDoctor(ctx context.Context, patientEmail string, doctorEmail *string) error {
	query := `
		UPDATE patients
		SET doctor_email = $2
		WHERE email = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, patientEmail, doctorEmail)
	if err != nil {
		return fmt.Errorf("failed to assign doctor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("patient with email %s not found: %w", patientEmail, ErrNotFound)
	}

	return nil
}

// ListByDoctor retrieves all patients assigned to a doctor
func (r *patientRepository) ListByDoctor(ctx context.Context, doctorEmail string) ([]*domain.Patient, error) {
	query := `
		SELECT email, first_name, last_name, full_name, password_hash, auth_method, doctor_email, created_at
		FROM patients
		WHERE doctor_email = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, doctorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients by doctor: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		patient := &domain.Patient{}
		var docEmail sql.NullString

		err := rows.Scan(
			&patient.Email,
			&patient.FirstName,
			&patient.LastName,
			&patient.FullName,
			&patient.PasswordHash,
			&patient.AuthMethod,
			&docEmail,
			&patient.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}

		if docEmail.Valid {
			patient.DoctorEmail = &docEmail.String
		}

		patients = append(patients, patient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	return patients, nil
}

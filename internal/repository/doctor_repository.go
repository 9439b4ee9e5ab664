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

// doctorRepository implements DoctorRepository interface
type doctorRepository struct {
	db *database.Postgres
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *database.Postgres) DoctorRepository {
	return &doctorRepository{db: db}
}

// Create creates a new doctor in the database
func (r *doctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	query := `
		INSERT INTO doctors (email, first_name, last_name, full_name, password_hash, specialization, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if doctor.CreatedAt.IsZero() {
		doctor.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		doctor.Email,
		doctor.FirstName,
		doctor.LastName,
		doctor.FullName,
		doctor.PasswordHash,
		doctor.Specialization,
		doctor.Description,
		doctor.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("doctor with email %s already exists: %w", doctor.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	return nil
}

// GetByEmail retrieves a doctor by email
func (r *doctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	query := `
		SELECT email, first_name, last_name, full_name, password_hash, specialization, description, created_at
		FROM doctors
		WHERE email = $1
	`

	doctor := &domain.Doctor{}

	err := r.db.DB.QueryRowContext(ctx, query, email).Scan(
		&doctor.Email,
		&doctor.FirstName,
		&doctor.LastName,
		&doctor.FullName,
		&doctor.PasswordHash,
		&doctor.Specialization,
		&doctor.Description,
		&doctor.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("doctor with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get doctor by email: %w", err)
	}

	return doctor, nil
}

// List retrieves all doctors
func (r *doctorRepository) List(ctx context.Context) ([]*domain.Doctor, error) {
	query := `
		SELECT email, first_name, last_name, full_name, password_hash, specialization, description, created_at
		FROM doctors
		ORDER BY full_name
	`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var doctors []*domain.Doctor
	for rows.Next() {
		doctor := &domain.Doctor{}

		err := rows.Scan(
			&doctor.Email,
			&doctor.FirstName,
			&doctor.LastName,
			&doctor.FullName,
			&doctor.PasswordHash,
			&doctor.Specialization,
			&doctor.Description,
			&doctor.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}

		doctors = append(doctors, doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate doctors: %w", err)
	}

	return doctors, nil
}

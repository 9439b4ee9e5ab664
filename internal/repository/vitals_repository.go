package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/pkg/database"
)

// vitalsRepository implements VitalsRepository interface
type vitalsRepository struct {
	db *database.Postgres
}

// NewVitalsRepository creates a new vitals repository
func NewVitalsRepository(db *database.Postgres) VitalsRepository {
	return &vitalsRepository{db: db}
}

const upsertSnapshotQuery = `
	INSERT INTO vitals_snapshots (patient_email, steps, calories, systolic, diastolic, heart_rate, oxygen_saturation, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (patient_email) DO UPDATE SET
		steps = EXCLUDED.steps,
		calories = EXCLUDED.calories,
		systolic = EXCLUDED.systolic,
		diastolic = EXCLUDED.diastolic,
		heart_rate = EXCLUDED.heart_rate,
		oxygen_saturation = EXCLUDED.oxygen_saturation,
		updated_at = EXCLUDED.updated_at
`

const appendSampleQuery = `
	INSERT INTO heart_rate_samples (patient_email, heart_rate, recorded_at)
	VALUES ($1, $2, $3)
`

// UpsertSnapshot overwrites the snapshot for a patient, keeping exactly one
// row per patient
func (r *vitalsRepository) UpsertSnapshot(ctx context.Context, snapshot *domain.VitalsSnapshot) error {
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, upsertSnapshotQuery,
		snapshot.PatientEmail,
		snapshot.Steps,
		snapshot.Calories,
		snapshot.Systolic,
		snapshot.Diastolic,
		snapshot.HeartRate,
		snapshot.OxygenSaturation,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// AppendHeartRateSample inserts one history sample; duplicates are allowed
func (r *vitalsRepository) AppendHeartRateSample(ctx context.Context, patientEmail string, heartRate *float64) error {
	_, err := r.db.DB.ExecContext(ctx, appendSampleQuery, patientEmail, heartRate, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append heart rate sample: %w", err)
	}

	return nil
}

// SaveObservation writes the snapshot and, when heartRate is non-nil, a
// history sample, atomically. Either both rows land or neither does.
func (r *vitalsRepository) SaveObservation(ctx context.Context, snapshot *domain.VitalsSnapshot, heartRate *float64) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, upsertSnapshotQuery,
		snapshot.PatientEmail,
		snapshot.Steps,
		snapshot.Calories,
		snapshot.Systolic,
		snapshot.Diastolic,
		snapshot.HeartRate,
		snapshot.OxygenSaturation,
		snapshot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	if heartRate != nil {
		_, err = tx.ExecContext(ctx, appendSampleQuery, snapshot.PatientEmail, heartRate, snapshot.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to append heart rate sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit observation: %w", err)
	}

	return nil
}

// GetSnapshot retrieves the latest snapshot for a patient
func (r *vitalsRepository) GetSnapshot(ctx context.Context, patientEmail string) (*domain.VitalsSnapshot, error) {
	query := `
		SELECT patient_email, steps, calories, systolic, diastolic, heart_rate, oxygen_saturation, updated_at
		FROM vitals_snapshots
		WHERE patient_email = $1
	`

	snapshot := &domain.VitalsSnapshot{}

	err := r.db.DB.QueryRowContext(ctx, query, patientEmail).Scan(
		&snapshot.PatientEmail,
		&snapshot.Steps,
		&snapshot.Calories,
		&snapshot.Systolic,
		&snapshot.Diastolic,
		&snapshot.HeartRate,
		&snapshot.OxygenSaturation,
		&snapshot.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot for patient %s not found: %w", patientEmail, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return snapshot, nil
}

// History retrieves all heart-rate observations for a patient in insertion
// order
func (r *vitalsRepository) History(ctx context.Context, patientEmail string) ([]*float64, error) {
	query := `
		SELECT heart_rate
		FROM heart_rate_samples
		WHERE patient_email = $1
		ORDER BY id
	`

	rows, err := r.db.DB.QueryContext(ctx, query, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get heart rate history: %w", err)
	}
	defer rows.Close()

	var history []*float64
	for rows.Next() {
		var value sql.NullFloat64
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan heart rate sample: %w", err)
		}

		if value.Valid {
			v := value.Float64
			history = append(history, &v)
		} else {
			history = append(history, nil)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate heart rate samples: %w", err)
	}

	return history, nil
}

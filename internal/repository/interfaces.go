package repository

import (
	"context"

	"github.com/nmezhoud/healthlink/internal/domain"
)

// PatientRepository defines methods for patient operations
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	GetByEmail(ctx context.Context, email string) (*domain.Patient, error)
	SetAuthMethod(ctx context.Context, email string, method domain.AuthMethod) error
	AssignDoctor(ctx context.Context, patientEmail string, doctorEmail *string) error
	ListByDoctor(ctx context.Context, doctorEmail string) ([]*domain.Patient, error)
}

// DoctorRepository defines methods for doctor operations
type DoctorRepository interface {
	Create(ctx context.Context, doctor *domain.Doctor) error
	GetByEmail(ctx context.Context, email string) (*domain.Doctor, error)
	List(ctx context.Context) ([]*domain.Doctor, error)
}

// CredentialRepository persists one provider credential set per patient.
// Upsert fully replaces all fields except created_at and never replaces a
// stored non-null refresh token with null.
type CredentialRepository interface {
	Upsert(ctx context.Context, cred *domain.Credential) error
	GetByPatient(ctx context.Context, patientEmail string) (*domain.Credential, error)
}

// VitalsRepository persists the per-patient snapshot (overwrite) and the
// append-only heart-rate history.
type VitalsRepository interface {
	UpsertSnapshot(ctx context.Context, snapshot *domain.VitalsSnapshot) error
	AppendHeartRateSample(ctx context.Context, patientEmail string, heartRate *float64) error
	// SaveObservation writes the snapshot and, when heartRate is non-nil,
	// appends a history sample, in a single transaction.
	SaveObservation(ctx context.Context, snapshot *domain.VitalsSnapshot, heartRate *float64) error
	GetSnapshot(ctx context.Context, patientEmail string) (*domain.VitalsSnapshot, error)
	History(ctx context.Context, patientEmail string) ([]*float64, error)
}

// AssignmentRepository defines methods for assignment request operations
type AssignmentRepository interface {
	Create(ctx context.Context, req *domain.AssignmentRequest) error
	GetByID(ctx context.Context, id string) (*domain.AssignmentRequest, error)
	ListPendingByDoctor(ctx context.Context, doctorEmail string) ([]*domain.AssignmentRequest, error)
	// Accept marks the request accepted and assigns the patient to the
	// doctor in one transaction.
	Accept(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) error
}

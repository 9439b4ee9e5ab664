package service

import (
	"context"
	"encoding/json"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*AuthResponseWithRefreshToken, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*AuthResponseWithRefreshToken, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponseWithRefreshToken, error)
	Logout(ctx context.Context, caller domain.Caller, refreshToken string) error
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// LinkedIdentity is the outcome of a completed OAuth link: the bound local
// patient and the provider access token. Session issuance is the caller's
// concern.
type LinkedIdentity struct {
	Patient     *domain.Patient
	AccessToken string
}

// LinkService drives the three-legged OAuth flow binding a patient account
// to the fitness provider
type LinkService interface {
	Begin(ctx context.Context, loginHint string) (authURL string, state string, err error)
	Complete(ctx context.Context, state, code string) (*LinkedIdentity, error)
}

// VitalsService fetches the five metric streams for a patient, persists the
// normalized snapshot, and appends the heart-rate observation
type VitalsService interface {
	Fetch(ctx context.Context, patientEmail string) (*domain.VitalsSnapshot, error)
}

// PredictionService relays a patient's heart-rate history to the external
// prediction endpoint and passes the response through verbatim
type PredictionService interface {
	Predict(ctx context.Context, patientEmail string) (json.RawMessage, error)
}

// AssignmentService manages the doctor directory and the patient-to-doctor
// assignment workflow
type AssignmentService interface {
	ListDoctors(ctx context.Context) ([]*domain.Doctor, error)
	RequestAssignment(ctx context.Context, patientEmail, doctorEmail string) (*domain.AssignmentRequest, error)
	PendingRequests(ctx context.Context, doctorEmail string) ([]dto.PendingRequestInfo, error)
	Respond(ctx context.Context, doctorEmail, requestID, action string) error
	ListPatients(ctx context.Context, doctorEmail string) ([]*domain.Patient, error)
	Unassign(ctx context.Context, caller domain.Caller, patientEmail string) error
}

// StateStore issues and redeems single-use OAuth state tokens used for CSRF
// protection on the callback
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	// Consume validates and invalidates a state token; ok is false when
	// the token was never issued or already redeemed.
	Consume(ctx context.Context, state string) (bool, error)
}

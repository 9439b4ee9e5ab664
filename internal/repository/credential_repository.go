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

// credentialRepository implements CredentialRepository interface
type credentialRepository struct {
	db *database.Postgres
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *database.Postgres) CredentialRepository {
	return &credentialRepository{db: db}
}

// Upsert creates or fully replaces the credential set for a patient.
// created_at is set once on first insert. A null incoming refresh token
// never overwrites a stored one: the provider does not reissue the refresh
// token on every grant.
func (r *credentialRepository) Upsert(ctx context.Context, cred *domain.Credential) error {
	query := `
		INSERT INTO user_credentials (patient_email, access_token, refresh_token, token_endpoint, client_id, client_secret, scopes, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (patient_email) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, user_credentials.refresh_token),
			token_endpoint = EXCLUDED.token_endpoint,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			scopes = EXCLUDED.scopes,
			expires_at = EXCLUDED.expires_at
	`

	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		cred.PatientEmail,
		cred.AccessToken,
		cred.RefreshToken,
		cred.TokenEndpoint,
		cred.ClientID,
		cred.ClientSecret,
		pq.Array(cred.Scopes),
		cred.ExpiresAt,
		cred.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	return nil
}

// GetByPatient retrieves the credential set for a patient. ErrNotFound means
// the patient has not linked a provider account.
func (r *credentialRepository) GetByPatient(ctx context.Context, patientEmail string) (*domain.Credential, error) {
	query := `
		SELECT patient_email, access_token, refresh_token, token_endpoint, client_id, client_secret, scopes, expires_at, created_at
		FROM user_credentials
		WHERE patient_email = $1
	`

	cred := &domain.Credential{}
	var refreshToken sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, patientEmail).Scan(
		&cred.PatientEmail,
		&cred.AccessToken,
		&refreshToken,
		&cred.TokenEndpoint,
		&cred.ClientID,
		&cred.ClientSecret,
		pq.Array(&cred.Scopes),
		&cred.ExpiresAt,
		&cred.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential for patient %s not found: %w", patientEmail, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	if refreshToken.Valid {
		cred.RefreshToken = &refreshToken.String
	}

	return cred, nil
}

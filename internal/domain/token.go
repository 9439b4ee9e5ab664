package domain

import "time"

// TokenClaims represents JWT token claims
type TokenClaims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

// RefreshToken represents a stored refresh token. Subject is the email of the
// doctor or patient the token was issued to.
type RefreshToken struct {
	ID        string    `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject_email"`
	Role      Role      `json:"role" db:"role"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}

// Caller returns the principal described by the claims
func (tc TokenClaims) Caller() Caller {
	return Caller{Role: tc.Role, Email: tc.Email}
}

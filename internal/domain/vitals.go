package domain

import "time"

// Credential holds the OAuth credential set issued by the fitness provider
// for one patient. Exactly one row exists per linked patient.
//
// RefreshToken is nil when the provider did not reissue one on the most
// recent grant; the stored value must never be replaced with nil once set.
type Credential struct {
	PatientEmail  string    `json:"patient_email" db:"patient_email"`
	AccessToken   string    `json:"-" db:"access_token"`
	RefreshToken  *string   `json:"-" db:"refresh_token"`
	TokenEndpoint string    `json:"token_endpoint" db:"token_endpoint"`
	ClientID      string    `json:"client_id" db:"client_id"`
	ClientSecret  string    `json:"-" db:"client_secret"`
	Scopes        []string  `json:"scopes" db:"scopes"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the access token has passed its expiry.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// VitalsSnapshot is the latest-known vitals summary for a patient,
// overwritten on every successful fetch cycle. Every metric field is
// independently nullable: nil means the provider reported no data for that
// metric in the window, never zero.
type VitalsSnapshot struct {
	PatientEmail     string    `json:"patient_email" db:"patient_email"`
	Steps            *int64    `json:"steps" db:"steps"`
	Calories         *float64  `json:"calories" db:"calories"`
	Systolic         *float64  `json:"systolic" db:"systolic"`
	Diastolic        *float64  `json:"diastolic" db:"diastolic"`
	HeartRate        *float64  `json:"heart_rate" db:"heart_rate"`
	OxygenSaturation *float64  `json:"oxygen_saturation" db:"oxygen_saturation"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// HeartRateSample is one append-only heart-rate observation. Samples are
// never updated or deleted; history grows monotonically per patient.
type HeartRateSample struct {
	ID           int64     `json:"id" db:"id"`
	PatientEmail string    `json:"patient_email" db:"patient_email"`
	HeartRate    *float64  `json:"heart_rate" db:"heart_rate"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}

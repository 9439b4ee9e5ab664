package domain

import "time"

// Role identifies the kind of account acting in a request
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// AuthMethod identifies how a patient authenticates
type AuthMethod string

const (
	// AuthMethodManual means the patient logs in with a local password
	AuthMethodManual AuthMethod = "manual"
	// AuthMethodFederated means authentication is delegated to the fitness
	// provider; local password login is rejected for such accounts
	AuthMethodFederated AuthMethod = "federated"
)

// Caller is the authenticated principal acting in a request
type Caller struct {
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

// Doctor represents a doctor account
type Doctor struct {
	Email          string    `json:"email" db:"email"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	FullName       string    `json:"full_name" db:"full_name"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Specialization string    `json:"specialization" db:"specialization"`
	Description    string    `json:"description" db:"description"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Patient represents a patient account. DoctorEmail is nil until the patient
// has an active assignment.
type Patient struct {
	Email        string     `json:"email" db:"email"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	FullName     string     `json:"full_name" db:"full_name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	AuthMethod   AuthMethod `json:"auth_method" db:"auth_method"`
	DoctorEmail  *string    `json:"doctor_email" db:"doctor_email"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// RequestStatus is the state of an assignment request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// AssignmentRequest represents a patient's request to be assigned to a doctor
type AssignmentRequest struct {
	ID           string        `json:"id" db:"id"`
	PatientEmail string        `json:"patient_email" db:"patient_email"`
	DoctorEmail  string        `json:"doctor_email" db:"doctor_email"`
	Status       RequestStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

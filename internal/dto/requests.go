package dto

// RegisterPatientRequest represents a patient registration request
type RegisterPatientRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Doctor    string `json:"doctor"`
}

// RegisterDoctorRequest represents a doctor registration request
type RegisterDoctorRequest struct {
	FirstName      string `json:"first_name" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Specialization string `json:"specialization" binding:"required"`
	Description    string `json:"description"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// UserInfo represents user information in response
type UserInfo struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// BeginLinkResponse carries the provider authorization URL to redirect to
type BeginLinkResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// CompleteLinkResponse is returned after a successful OAuth callback. Token
// is a session access token for the linked patient.
type CompleteLinkResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

// CreateAssignmentRequest asks for the caller (a patient) to be assigned to
// the given doctor
type CreateAssignmentRequest struct {
	DoctorEmail string `json:"doctor_email" binding:"required,email"`
}

// RespondAssignmentRequest accepts or rejects a pending assignment request
type RespondAssignmentRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=accept reject"`
}

// PendingRequestInfo is one entry in a doctor's pending request list
type PendingRequestInfo struct {
	ID           string `json:"id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
}

// DoctorInfo is one entry in the doctor directory
type DoctorInfo struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	Description    string `json:"description"`
}

// PatientInfo is one entry in a doctor's patient list
type PatientInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

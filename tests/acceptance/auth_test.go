package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/nmezhoud/healthlink/internal/dto"
)

// postJSON sends a JSON POST and returns the response
func (s *Suite) postJSON(path string, payload interface{}, token string) *http.Response {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost, s.App.BaseURL+path, bytes.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

// doRequest sends a bodyless request with an optional bearer token
func (s *Suite) doRequest(method, path, token string) *http.Response {
	req, err := http.NewRequest(method, s.App.BaseURL+path, nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

// registerPatient registers a patient and returns its access token
func (s *Suite) registerPatient(email string) string {
	resp := s.postJSON("/api/v1/auth/register/patient", dto.RegisterPatientRequest{
		FirstName: "Test",
		LastName:  "Patient",
		Email:     email,
		Password:  "Password123",
	}, "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	return authResp.AccessToken
}

// registerDoctor registers a doctor and returns its access token
func (s *Suite) registerDoctor(email string) string {
	resp := s.postJSON("/api/v1/auth/register/doctor", dto.RegisterDoctorRequest{
		FirstName:      "Test",
		LastName:       "Doctor",
		Email:          email,
		Password:       "Password123",
		Specialization: "Cardiology",
	}, "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	return authResp.AccessToken
}

func (s *Suite) TestRegisterPatient_Success() {
	resp := s.postJSON("/api/v1/auth/register/patient", dto.RegisterPatientRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Password:  "Password123",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("alice@example.com", authResp.User.Email)
	s.Equal("Alice Smith", authResp.User.FullName)
	s.Equal("patient", authResp.User.Role)

	s.NotEmpty(resp.Cookies(), "Should have refresh token cookie")
}

func (s *Suite) TestRegisterPatient_WithChosenDoctor() {
	s.registerDoctor("doc@example.com")

	resp := s.postJSON("/api/v1/auth/register/patient", dto.RegisterPatientRequest{
		FirstName: "Bob",
		LastName:  "Jones",
		Email:     "bob@example.com",
		Password:  "Password123",
		Doctor:    "doc@example.com",
	}, "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "bob@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(patient.DoctorEmail)
	s.Equal("doc@example.com", *patient.DoctorEmail)
}

func (s *Suite) TestRegisterPatient_DuplicateEmail() {
	s.registerPatient("duplicate@example.com")

	resp := s.postJSON("/api/v1/auth/register/patient", dto.RegisterPatientRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "duplicate@example.com",
		Password:  "Password123",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegisterDoctor_Success() {
	resp := s.postJSON("/api/v1/auth/register/doctor", dto.RegisterDoctorRequest{
		FirstName:      "Greg",
		LastName:       "House",
		Email:          "house@example.com",
		Password:       "Password123",
		Specialization: "Diagnostics",
		Description:    "It's never lupus",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	s.Equal("doctor", authResp.User.Role)
}

func (s *Suite) TestRegister_InvalidEmail() {
	resp := s.postJSON("/api/v1/auth/register/patient", dto.RegisterPatientRequest{
		FirstName: "Bad",
		LastName:  "Email",
		Email:     "invalid-email",
		Password:  "Password123",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.registerPatient("login@example.com")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "Password123",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	s.NotEmpty(authResp.AccessToken)
	s.Equal("patient", authResp.User.Role)
}

func (s *Suite) TestLogin_Doctor() {
	s.registerDoctor("docLogin@example.com")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "doclogin@example.com",
		Password: "Password123",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	s.Equal("doctor", authResp.User.Role)
}

func (s *Suite) TestLogin_WrongPassword() {
	s.registerPatient("wrongpass@example.com")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "wrongpass@example.com",
		Password: "Nope12345",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogin_FederatedAccountRefused() {
	s.linkAccount("federated@example.com")

	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{
		Email:    "federated@example.com",
		Password: "Password123",
	}, "")
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	s.Contains(string(body), "linked provider")
}

func (s *Suite) TestLogout_InvalidatesNothingWithoutCookie() {
	token := s.registerPatient("logout@example.com")

	resp := s.postJSON("/api/v1/auth/logout", struct{}{}, token)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestProtectedEndpoint_RequiresToken() {
	resp := s.doRequest(http.MethodGet, "/api/v1/vitals", "")
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

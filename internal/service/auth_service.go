package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/repository"
	"github.com/nmezhoud/healthlink/internal/utils"
)

// authService implements AuthService for both doctor and patient accounts
type authService struct {
	patientRepo        repository.PatientRepository
	doctorRepo         repository.DoctorRepository
	tokenRepo          repository.TokenRepository
	jwtManager         *utils.JWTManager
	blacklistService   *TokenBlacklistService
	bcryptCost         int
	refreshTokenExpiry time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *utils.JWTManager,
	blacklistService *TokenBlacklistService,
	bcryptCost int,
	refreshTokenExpiry time.Duration,
) AuthService {
	return &authService{
		patientRepo:        patientRepo,
		doctorRepo:         doctorRepo,
		tokenRepo:          tokenRepo,
		jwtManager:         jwtManager,
		blacklistService:   blacklistService,
		bcryptCost:         bcryptCost,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// RegisterPatient registers a new patient with manual authentication
func (s *authService) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*AuthResponseWithRefreshToken, error) {
	email := utils.SanitizeEmail(req.Email)

	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	if _, err := s.patientRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("patient with email %s already exists", email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check patient existence: %w", err)
	}

	var doctorEmail *string
	if req.Doctor != "" {
		doctor, err := s.doctorRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Doctor))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve chosen doctor: %w", err)
		}
		doctorEmail = &doctor.Email
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	patient := &domain.Patient{
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		FullName:     strings.TrimSpace(req.FirstName + " " + req.LastName),
		PasswordHash: passwordHash,
		AuthMethod:   domain.AuthMethodManual,
		DoctorEmail:  doctorEmail,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	return s.generateAuthResponse(ctx, domain.Caller{Role: domain.RolePatient, Email: patient.Email}, patient.FullName)
}

// RegisterDoctor registers a new doctor
func (s *authService) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*AuthResponseWithRefreshToken, error) {
	email := utils.SanitizeEmail(req.Email)

	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, fmt.Errorf("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	if _, err := s.doctorRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("doctor with email %s already exists", email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check doctor existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	doctor := &domain.Doctor{
		Email:          email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		FullName:       strings.TrimSpace(req.FirstName + " " + req.LastName),
		PasswordHash:   passwordHash,
		Specialization: req.Specialization,
		Description:    req.Description,
	}

	if err := s.doctorRepo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	return s.generateAuthResponse(ctx, domain.Caller{Role: domain.RoleDoctor, Email: doctor.Email}, doctor.FullName)
}

// Login authenticates a patient or a doctor by email and password. A
// federated patient account is refused with ErrFederatedAccount: once
// linked, only federated sign-in is accepted.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error) {
	email := utils.SanitizeEmail(req.Email)

	patient, err := s.patientRepo.GetByEmail(ctx, email)
	if err == nil {
		if patient.AuthMethod == domain.AuthMethodFederated {
			return nil, fmt.Errorf("please sign in with the linked provider: %w", ErrFederatedAccount)
		}
		if !utils.CheckPasswordHash(req.Password, patient.PasswordHash) {
			return nil, fmt.Errorf("invalid email or password")
		}
		return s.generateAuthResponse(ctx, domain.Caller{Role: domain.RolePatient, Email: patient.Email}, patient.FullName)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	doctor, err := s.doctorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, doctor.PasswordHash) {
		return nil, fmt.Errorf("invalid email or password")
	}

	return s.generateAuthResponse(ctx, domain.Caller{Role: domain.RoleDoctor, Email: doctor.Email}, doctor.FullName)
}

// RefreshToken refreshes access and refresh tokens
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponseWithRefreshToken, error) {
	caller, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	tokenHash := hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("invalid refresh token")
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if time.Now().After(dbToken.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired")
	}

	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, fmt.Errorf("refresh token is blacklisted")
	}

	fullName, err := s.lookupFullName(ctx, caller)
	if err != nil {
		return nil, err
	}

	// Rotate: blacklist and drop the old token before issuing new ones
	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshTokenExpiry); err != nil {
		// Log error but continue
		_ = err
	}
	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		// Log error but continue
		_ = err
	}

	return s.generateAuthResponse(ctx, caller, fullName)
}

// Logout logs out a principal, invalidating the refresh token
func (s *authService) Logout(ctx context.Context, caller domain.Caller, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	tokenHash := hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil || dbToken.Subject != caller.Email {
		return nil
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshTokenExpiry); err != nil {
		// Log error but continue
		_ = err
	}
	if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		// Log error but continue
		_ = err
	}

	return nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, fmt.Errorf("token is blacklisted")
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return claims, nil
}

func (s *authService) lookupFullName(ctx context.Context, caller domain.Caller) (string, error) {
	switch caller.Role {
	case domain.RolePatient:
		patient, err := s.patientRepo.GetByEmail(ctx, caller.Email)
		if err != nil {
			return "", fmt.Errorf("failed to get patient: %w", err)
		}
		return patient.FullName, nil
	case domain.RoleDoctor:
		doctor, err := s.doctorRepo.GetByEmail(ctx, caller.Email)
		if err != nil {
			return "", fmt.Errorf("failed to get doctor: %w", err)
		}
		return doctor.FullName, nil
	default:
		return "", fmt.Errorf("unknown role %q in refresh token", caller.Role)
	}
}

// hashToken hashes a token using SHA256
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

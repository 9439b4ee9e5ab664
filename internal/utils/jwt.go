package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nmezhoud/healthlink/internal/domain"
)

// JWTManager manages JWT token operations
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// GenerateAccessToken generates a new access token for a principal
func (j *JWTManager) GenerateAccessToken(caller domain.Caller) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": caller.Email,
		"role":  string(caller.Role),
		"exp":   now.Add(j.accessTokenExpiry).Unix(),
		"iat":   now.Unix(),
	})

	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken generates a new refresh token for a principal
func (j *JWTManager) GenerateRefreshToken(caller domain.Caller) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": caller.Email,
		"role":  string(caller.Role),
		"exp":   now.Add(j.refreshTokenExpiry).Unix(),
		"iat":   now.Unix(),
		"type":  "refresh",
		"jti":   uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT access token and returns claims
func (j *JWTManager) ValidateToken(tokenString string) (*domain.TokenClaims, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return nil, err
	}

	tokenClaims, err := claimsFromMap(claims)
	if err != nil {
		return nil, err
	}

	if tokenClaims.IsExpired() {
		return nil, fmt.Errorf("token is expired")
	}

	return tokenClaims, nil
}

// ValidateRefreshToken validates a refresh token and returns the principal
func (j *JWTManager) ValidateRefreshToken(tokenString string) (domain.Caller, error) {
	claims, err := j.parse(tokenString)
	if err != nil {
		return domain.Caller{}, err
	}

	if claims["type"] != "refresh" {
		return domain.Caller{}, fmt.Errorf("invalid token type")
	}

	tokenClaims, err := claimsFromMap(claims)
	if err != nil {
		return domain.Caller{}, err
	}

	if tokenClaims.IsExpired() {
		return domain.Caller{}, fmt.Errorf("token is expired")
	}

	return tokenClaims.Caller(), nil
}

// GetAccessTokenExpiry returns the access token expiry duration in seconds
func (j *JWTManager) GetAccessTokenExpiry() int {
	return int(j.accessTokenExpiry.Seconds())
}

func (j *JWTManager) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

func claimsFromMap(claims jwt.MapClaims) (*domain.TokenClaims, error) {
	email, ok := claims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid email in token")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid role in token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in token")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid iat in token")
	}

	return &domain.TokenClaims{
		Email: email,
		Role:  domain.Role(role),
		Exp:   int64(exp),
		Iat:   int64(iat),
	}, nil
}

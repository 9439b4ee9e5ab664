package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/fitness"
	"github.com/nmezhoud/healthlink/internal/repository"
	"golang.org/x/oauth2"
)

// linkService implements LinkService. It completes the authorization-code
// exchange against the provider and binds the remote identity to a local
// patient account.
type linkService struct {
	patients    repository.PatientRepository
	credentials repository.CredentialRepository
	states      StateStore
	oauth       *oauth2.Config
	provider    *fitness.Client
}

// NewLinkService creates a new link service
func NewLinkService(
	patients repository.PatientRepository,
	credentials repository.CredentialRepository,
	states StateStore,
	oauthConfig *oauth2.Config,
	provider *fitness.Client,
) LinkService {
	return &linkService{
		patients:    patients,
		credentials: credentials,
		states:      states,
		oauth:       oauthConfig,
		provider:    provider,
	}
}

// Begin issues a state token and builds the provider authorization URL.
// loginHint, when present, pre-selects the provider account.
func (s *linkService) Begin(ctx context.Context, loginHint string) (string, string, error) {
	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue state token: %w", err)
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", loginHint))
	}

	return s.oauth.AuthCodeURL(state, opts...), state, nil
}

// Complete redeems the callback state and code, resolves the remote
// identity, and upserts the patient and credential records
func (s *linkService) Complete(ctx context.Context, state, code string) (*LinkedIdentity, error) {
	if state == "" || code == "" {
		return nil, fmt.Errorf("state or code is absent: %w", ErrInvalidState)
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to check state token: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("state token was not issued or already redeemed: %w", ErrInvalidState)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrTokenExchange)
	}

	info, err := s.provider.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrIdentityResolution)
	}

	patient, err := s.bindPatient(ctx, info)
	if err != nil {
		return nil, err
	}

	var refreshToken *string
	if token.RefreshToken != "" {
		refreshToken = &token.RefreshToken
	}

	cred := &domain.Credential{
		PatientEmail:  patient.Email,
		AccessToken:   token.AccessToken,
		RefreshToken:  refreshToken,
		TokenEndpoint: s.oauth.Endpoint.TokenURL,
		ClientID:      s.oauth.ClientID,
		ClientSecret:  s.oauth.ClientSecret,
		Scopes:        s.oauth.Scopes,
		ExpiresAt:     token.Expiry,
	}

	if err := s.credentials.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	return &LinkedIdentity{Patient: patient, AccessToken: token.AccessToken}, nil
}

// bindPatient finds or creates the local patient for the remote identity.
// Created accounts are federated with no usable password; existing manual
// accounts are flipped to federated, after which password login is refused.
func (s *linkService) bindPatient(ctx context.Context, info *fitness.UserInfo) (*domain.Patient, error) {
	email := strings.ToLower(info.Email)

	patient, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up patient: %w", err)
		}

		patient = &domain.Patient{
			Email:      email,
			FirstName:  info.GivenName,
			LastName:   info.FamilyName,
			FullName:   strings.TrimSpace(info.GivenName + " " + info.FamilyName),
			AuthMethod: domain.AuthMethodFederated,
		}
		if err := s.patients.Create(ctx, patient); err != nil {
			return nil, fmt.Errorf("failed to create patient: %w", err)
		}
		return patient, nil
	}

	if patient.AuthMethod != domain.AuthMethodFederated {
		if err := s.patients.SetAuthMethod(ctx, patient.Email, domain.AuthMethodFederated); err != nil {
			return nil, fmt.Errorf("failed to mark patient federated: %w", err)
		}
		patient.AuthMethod = domain.AuthMethodFederated
	}

	return patient, nil
}

// RedirectHasError reports whether the provider callback carries an error
// parameter instead of a code
func RedirectHasError(rawQuery string) (string, bool) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", false
	}
	msg := values.Get("error")
	return msg, msg != ""
}

package service

import "errors"

// Failure taxonomy for the linking and ingestion pipeline. Handlers map
// these to HTTP statuses; nothing here is fatal to the process.
var (
	// ErrInvalidState is returned when the OAuth callback state token is
	// absent or does not match an issued one
	ErrInvalidState = errors.New("invalid or expired state token")

	// ErrTokenExchange is returned when the authorization code cannot be
	// exchanged at the provider token endpoint
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrIdentityResolution is returned when the provider identity
	// endpoint cannot be queried with the new access token
	ErrIdentityResolution = errors.New("identity resolution failed")

	// ErrProvider is returned when any dataset query fails; no partial
	// snapshot is persisted
	ErrProvider = errors.New("provider dataset query failed")

	// ErrUpstreamTimeout is returned when the prediction endpoint does not
	// answer within the configured timeout
	ErrUpstreamTimeout = errors.New("prediction endpoint timed out")

	// ErrUpstreamError is returned when the prediction endpoint answers
	// with a non-2xx status or an unparseable body
	ErrUpstreamError = errors.New("prediction endpoint error")

	// ErrForbidden is returned when the caller's role or assignment does
	// not permit acting on the requested patient
	ErrForbidden = errors.New("caller is not authorized for this patient")

	// ErrMissingParameter is returned when a required parameter is absent
	ErrMissingParameter = errors.New("required parameter is missing")

	// ErrFederatedAccount is returned when a federated patient attempts a
	// password login
	ErrFederatedAccount = errors.New("account uses federated sign-in")
)

package acceptance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
)

// beginLink starts the OAuth flow and returns the issued state token
func (s *Suite) beginLink() string {
	resp := s.doRequest(http.MethodGet, "/api/v1/link/begin", "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var begin dto.BeginLinkResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&begin))

	authURL, err := url.Parse(begin.AuthorizationURL)
	s.Require().NoError(err)

	state := authURL.Query().Get("state")
	s.Require().NotEmpty(state)
	return state
}

// completeLink redeems the state with a fixed code and returns the response
func (s *Suite) completeLink(state string) *http.Response {
	return s.doRequest(http.MethodGet, "/api/v1/link/callback?state="+url.QueryEscape(state)+"&code=test-code", "")
}

// linkAccount runs the full link flow for the given provider identity and
// returns the issued session token
func (s *Suite) linkAccount(email string) string {
	s.Provider.SetIdentity(email, "Fed", "User")

	state := s.beginLink()
	resp := s.completeLink(state)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var complete dto.CompleteLinkResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&complete))
	s.Require().Equal(email, complete.Email)
	s.Require().NotEmpty(complete.Token)
	return complete.Token
}

func (s *Suite) TestLink_CreatesFederatedPatient() {
	s.linkAccount("newpatient@example.com")

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "newpatient@example.com")
	s.Require().NoError(err)
	s.Equal(domain.AuthMethodFederated, patient.AuthMethod)
	s.Equal("Fed User", patient.FullName)

	cred, err := s.App.Repositories.Credential.GetByPatient(context.Background(), "newpatient@example.com")
	s.Require().NoError(err)
	s.Equal("stub-access-token", cred.AccessToken)
	s.Require().NotNil(cred.RefreshToken)
	s.Equal("stub-refresh-token", *cred.RefreshToken)
}

func (s *Suite) TestLink_AuthorizationURLParameters() {
	resp := s.doRequest(http.MethodGet, "/api/v1/link/begin?email=hint@example.com", "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var begin dto.BeginLinkResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&begin))

	authURL, err := url.Parse(begin.AuthorizationURL)
	s.Require().NoError(err)

	query := authURL.Query()
	s.Equal("offline", query.Get("access_type"))
	s.Equal("true", query.Get("include_granted_scopes"))
	s.Equal("hint@example.com", query.Get("login_hint"))
	s.NotEmpty(query.Get("state"))
}

func (s *Suite) TestLink_UnknownStateRejected() {
	resp := s.completeLink("never-issued-state")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	_, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "jane.doe@example.com")
	s.Error(err, "no patient should be created for a rejected callback")
}

func (s *Suite) TestLink_StateIsSingleUse() {
	state := s.beginLink()

	first := s.completeLink(state)
	first.Body.Close()
	s.Require().Equal(http.StatusOK, first.StatusCode)

	second := s.completeLink(state)
	defer second.Body.Close()
	s.Equal(http.StatusBadRequest, second.StatusCode)
}

func (s *Suite) TestLink_FlipsManualAccountToFederated() {
	s.registerPatient("flip@example.com")

	s.linkAccount("flip@example.com")

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "flip@example.com")
	s.Require().NoError(err)
	s.Equal(domain.AuthMethodFederated, patient.AuthMethod)
}

func (s *Suite) TestLink_KeepsStoredRefreshTokenWhenOmitted() {
	s.linkAccount("relink@example.com")

	// The provider omits the refresh token on repeat grants
	s.Provider.SetTokens("second-access-token", "")
	s.linkAccount("relink@example.com")

	cred, err := s.App.Repositories.Credential.GetByPatient(context.Background(), "relink@example.com")
	s.Require().NoError(err)
	s.Equal("second-access-token", cred.AccessToken)
	s.Require().NotNil(cred.RefreshToken)
	s.Equal("stub-refresh-token", *cred.RefreshToken)
}

func (s *Suite) TestLink_ProviderDenialRejected() {
	resp := s.doRequest(http.MethodGet, "/api/v1/link/callback?error=access_denied", "")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

package acceptance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/nmezhoud/healthlink/internal/fitness"
)

// ProviderStub fakes the fitness provider and the prediction endpoint on one
// HTTP server. Tests mutate its fields between requests; Reset restores the
// defaults before each test.
type ProviderStub struct {
	server *httptest.Server

	mu               sync.Mutex
	identity         fitness.UserInfo
	accessToken      string
	refreshToken     string
	datasets         map[string]fitness.Dataset
	datasetStatus    int
	predictionBody   string
	predictionStatus int
	predictionDelay  time.Duration
}

// NewProviderStub starts the stub server
func NewProviderStub() *ProviderStub {
	stub := &ProviderStub{}
	stub.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", stub.handleToken)
	mux.HandleFunc("/userinfo", stub.handleUserInfo)
	mux.HandleFunc("/fitness/v3/users/me/dataSources/", stub.handleDataset)
	mux.HandleFunc("/predict", stub.handlePredict)

	stub.server = httptest.NewServer(mux)
	return stub
}

// Reset restores default stub behavior
func (p *ProviderStub) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.identity = fitness.UserInfo{
		Email:      "jane.doe@example.com",
		GivenName:  "Jane",
		FamilyName: "Doe",
	}
	p.accessToken = "stub-access-token"
	p.refreshToken = "stub-refresh-token"
	p.datasets = make(map[string]fitness.Dataset)
	p.datasetStatus = http.StatusOK
	p.predictionBody = `{"prediction":"normal","confidence":0.97}`
	p.predictionStatus = http.StatusOK
	p.predictionDelay = 0
}

// Close shuts the stub server down
func (p *ProviderStub) Close() {
	p.server.Close()
}

// URL returns the stub server base URL
func (p *ProviderStub) URL() string {
	return p.server.URL
}

// SetIdentity configures the identity the userinfo endpoint reports
func (p *ProviderStub) SetIdentity(email, givenName, familyName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = fitness.UserInfo{Email: email, GivenName: givenName, FamilyName: familyName}
}

// SetTokens configures the tokens the token endpoint issues
func (p *ProviderStub) SetTokens(accessToken, refreshToken string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessToken = accessToken
	p.refreshToken = refreshToken
}

// SetDataset configures the dataset served for one data source
func (p *ProviderStub) SetDataset(dataSourceID string, dataset fitness.Dataset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.datasets[dataSourceID] = dataset
}

// FailDatasets makes every dataset request answer with the given status
func (p *ProviderStub) FailDatasets(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.datasetStatus = status
}

// SetPrediction configures the prediction endpoint response
func (p *ProviderStub) SetPrediction(status int, body string, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.predictionStatus = status
	p.predictionBody = body
	p.predictionDelay = delay
}

func (p *ProviderStub) handleToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	access, refresh := p.accessToken, p.refreshToken
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func (p *ProviderStub) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	identity := p.identity
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(identity)
}

func (p *ProviderStub) handleDataset(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	status := p.datasetStatus
	path := strings.TrimPrefix(r.URL.Path, "/fitness/v3/users/me/dataSources/")
	dataSourceID := strings.SplitN(path, "/datasets/", 2)[0]
	dataset := p.datasets[dataSourceID]
	p.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "provider unavailable", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dataset)
}

func (p *ProviderStub) handlePredict(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	status, body, delay := p.predictionStatus, p.predictionBody, p.predictionDelay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

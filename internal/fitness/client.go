// Package fitness is a thin client for the fitness data provider: the OAuth
// authorization endpoints, the identity endpoint, and the dataset API that
// serves time-bucketed measurement points.
package fitness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nmezhoud/healthlink/internal/config"
	"golang.org/x/oauth2"
)

// Data source identifiers for the five metric streams
const (
	DataSourceSteps            = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"
	DataSourceCalories         = "derived:com.google.calories.expended:com.google.android.gms:merge_calories_expended"
	DataSourceBloodPressure    = "derived:com.google.blood_pressure:com.google.android.gms:merged"
	DataSourceHeartRate        = "derived:com.google.heart_rate.bpm:com.google.android.gms:merge_heart_rate_bpm"
	DataSourceOxygenSaturation = "derived:com.google.oxygen_saturation:com.google.android.gms:merged"
)

// Value is one typed measurement value inside a point
type Value struct {
	IntVal *int64   `json:"intVal,omitempty"`
	FpVal  *float64 `json:"fpVal,omitempty"`
}

// Point is one time-bucketed measurement carrying one or more values
type Point struct {
	StartTimeNanos int64   `json:"startTimeNanos,string"`
	EndTimeNanos   int64   `json:"endTimeNanos,string"`
	Value          []Value `json:"value"`
}

// Dataset is the provider response for one metric stream over a window
type Dataset struct {
	Point []Point `json:"point"`
}

// UserInfo is the provider's view of the account identity
type UserInfo struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Client talks to the provider's dataset and identity endpoints
type Client struct {
	http           *http.Client
	datasetBaseURL string
	userInfoURL    string
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		http:           &http.Client{Timeout: cfg.Timeout.Duration},
		datasetBaseURL: cfg.DatasetBaseURL,
		userInfoURL:    cfg.UserInfoURL,
	}
}

// OAuthConfig builds the authorization-code flow configuration for the
// provider from service configuration
func OAuthConfig(cfg config.ProviderConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
	}
}

// Dataset fetches all points for one data source over the window
// [startMs, endMs] in epoch milliseconds
func (c *Client) Dataset(ctx context.Context, accessToken, dataSourceID string, startMs, endMs int64) (*Dataset, error) {
	url := fmt.Sprintf("%s/users/me/dataSources/%s/datasets/%d-%d",
		c.datasetBaseURL, dataSourceID, startMs, endMs)

	body, err := c.get(ctx, url, accessToken)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dataSourceID, err)
	}

	var dataset Dataset
	if err := json.Unmarshal(body, &dataset); err != nil {
		return nil, fmt.Errorf("dataset %s: failed to decode response: %w", dataSourceID, err)
	}

	return &dataset, nil
}

// UserInfo resolves the remote account identity using the access token
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	body, err := c.get(ctx, c.userInfoURL, accessToken)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("userinfo: failed to decode response: %w", err)
	}

	if info.Email == "" {
		return nil, fmt.Errorf("userinfo: response carries no email")
	}

	return &info, nil
}

func (c *Client) get(ctx context.Context, url, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return body, nil
}

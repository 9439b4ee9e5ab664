package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/nmezhoud/healthlink/internal/config"
	"github.com/nmezhoud/healthlink/internal/repository"
)

// heartbeatReading mirrors one stored heart-rate observation on the wire
type heartbeatReading struct {
	HeartRate *float64 `json:"heart_rate"`
}

// predictionRequest is the exact payload shape the prediction endpoint
// expects: the reading list wrapped in a single-element outer list
type predictionRequest struct {
	Heartbeat [][]heartbeatReading `json:"heartbeat"`
}

// predictionService implements PredictionService
type predictionService struct {
	vitals repository.VitalsRepository
	http   *http.Client
	url    string
}

// NewPredictionService creates a new prediction relay
func NewPredictionService(vitals repository.VitalsRepository, cfg config.PredictionConfig) PredictionService {
	return &predictionService{
		vitals: vitals,
		http:   &http.Client{Timeout: cfg.Timeout.Duration},
		url:    cfg.URL,
	}
}

// Predict forwards the patient's full heart-rate history to the prediction
// endpoint and passes the response through unchanged
func (s *predictionService) Predict(ctx context.Context, patientEmail string) (json.RawMessage, error) {
	history, err := s.vitals.History(ctx, patientEmail)
	if err != nil {
		return nil, err
	}

	readings := make([]heartbeatReading, 0, len(history))
	for _, value := range history {
		readings = append(readings, heartbeatReading{HeartRate: value})
	}

	payload, err := json.Marshal(predictionRequest{Heartbeat: [][]heartbeatReading{readings}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%v: %w", err, ErrUpstreamTimeout)
		}
		return nil, fmt.Errorf("%v: %w", err, ErrUpstreamError)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("prediction endpoint returned status %d: %w", resp.StatusCode, ErrUpstreamError)
	}

	var prediction json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("unparseable prediction response: %v: %w", err, ErrUpstreamError)
	}

	return prediction, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

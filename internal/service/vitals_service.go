package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/fitness"
	"github.com/nmezhoud/healthlink/internal/repository"
	"golang.org/x/oauth2"
)

// fetchWindow is the trailing window every fetch cycle covers
const fetchWindow = 24 * time.Hour

// vitalsService implements VitalsService. One invocation queries the five
// metric streams over the trailing window, reduces them to a snapshot, and
// persists snapshot plus heart-rate history atomically.
type vitalsService struct {
	credentials repository.CredentialRepository
	vitals      repository.VitalsRepository
	provider    *fitness.Client
	oauth       *oauth2.Config
	now         func() time.Time
}

// NewVitalsService creates a new vitals service
func NewVitalsService(
	credentials repository.CredentialRepository,
	vitals repository.VitalsRepository,
	provider *fitness.Client,
	oauthConfig *oauth2.Config,
) VitalsService {
	return &vitalsService{
		credentials: credentials,
		vitals:      vitals,
		provider:    provider,
		oauth:       oauthConfig,
		now:         time.Now,
	}
}

// Fetch produces one snapshot for the patient. repository.ErrNotFound from
// the credential store means the patient never linked a provider account.
func (s *vitalsService) Fetch(ctx context.Context, patientEmail string) (*domain.VitalsSnapshot, error) {
	cred, err := s.credentials.GetByPatient(ctx, patientEmail)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.freshAccessToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	end := s.now().UnixMilli()
	start := end - fetchWindow.Milliseconds()

	snapshot := &domain.VitalsSnapshot{PatientEmail: patientEmail}

	steps, err := s.provider.Dataset(ctx, accessToken, fitness.DataSourceSteps, start, end)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrProvider)
	}
	snapshot.Steps = sumSteps(steps)

	calories, err := s.provider.Dataset(ctx, accessToken, fitness.DataSourceCalories, start, end)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrProvider)
	}
	snapshot.Calories = sumCalories(calories)

	bloodPressure, err := s.provider.Dataset(ctx, accessToken, fitness.DataSourceBloodPressure, start, end)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrProvider)
	}
	snapshot.Systolic, snapshot.Diastolic = lastBloodPressure(bloodPressure)

	heartRate, err := s.provider.Dataset(ctx, accessToken, fitness.DataSourceHeartRate, start, end)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrProvider)
	}
	snapshot.HeartRate = meanHeartRate(heartRate)

	oxygen, err := s.provider.Dataset(ctx, accessToken, fitness.DataSourceOxygenSaturation, start, end)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrProvider)
	}
	snapshot.OxygenSaturation = lastOxygenSaturation(oxygen)

	snapshot.UpdatedAt = s.now()

	// All five queries succeeded; only now touch the store. The history
	// sample is appended only for cycles that observed a heart rate.
	if err := s.vitals.SaveObservation(ctx, snapshot, snapshot.HeartRate); err != nil {
		return nil, fmt.Errorf("failed to persist observation: %w", err)
	}

	return snapshot, nil
}

// freshAccessToken returns a usable access token, refreshing through the
// provider token endpoint when the stored one is expired and a refresh
// token exists. The refreshed credential is re-persisted; the upsert merge
// keeps the stored refresh token when the provider omits a new one.
func (s *vitalsService) freshAccessToken(ctx context.Context, cred *domain.Credential) (string, error) {
	if !cred.Expired(s.now()) || cred.RefreshToken == nil {
		return cred.AccessToken, nil
	}

	stale := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: *cred.RefreshToken,
		Expiry:       cred.ExpiresAt,
	}

	token, err := s.oauth.TokenSource(ctx, stale).Token()
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrTokenExchange)
	}

	if token.AccessToken != cred.AccessToken {
		refreshed := *cred
		refreshed.AccessToken = token.AccessToken
		refreshed.ExpiresAt = token.Expiry
		if token.RefreshToken != "" && token.RefreshToken != *cred.RefreshToken {
			refreshed.RefreshToken = &token.RefreshToken
		}
		if err := s.credentials.Upsert(ctx, &refreshed); err != nil {
			return "", fmt.Errorf("failed to persist refreshed credential: %w", err)
		}
	}

	return token.AccessToken, nil
}

// sumSteps adds up all integer point values; missing points contribute
// nothing. The sum is reported even when zero points exist: an empty
// activity window legitimately means zero steps.
func sumSteps(dataset *fitness.Dataset) *int64 {
	var total int64
	for _, point := range dataset.Point {
		for _, value := range point.Value {
			if value.IntVal != nil {
				total += *value.IntVal
			}
		}
	}
	return &total
}

// sumCalories adds up all float point values
func sumCalories(dataset *fitness.Dataset) *float64 {
	var total float64
	for _, point := range dataset.Point {
		for _, value := range point.Value {
			if value.FpVal != nil {
				total += *value.FpVal
			}
		}
	}
	return &total
}

// lastBloodPressure takes the chronologically last point and decomposes its
// first two values as systolic/diastolic. The two sides are independently
// nullable; no point in the window leaves both nil.
func lastBloodPressure(dataset *fitness.Dataset) (systolic, diastolic *float64) {
	if len(dataset.Point) == 0 {
		return nil, nil
	}

	values := dataset.Point[len(dataset.Point)-1].Value
	if len(values) > 0 {
		systolic = values[0].FpVal
	}
	if len(values) > 1 {
		diastolic = values[1].FpVal
	}
	return systolic, diastolic
}

// meanHeartRate reduces all points in the window to one representative
// scalar, the arithmetic mean of the non-null readings. Nil when the window
// holds no readings, in which case no history sample is appended.
func meanHeartRate(dataset *fitness.Dataset) *float64 {
	var total float64
	var count int

	for _, point := range dataset.Point {
		if len(point.Value) == 0 {
			continue
		}
		if bpm := point.Value[0].FpVal; bpm != nil {
			total += *bpm
			count++
		}
	}

	if count == 0 {
		return nil
	}

	mean := total / float64(count)
	return &mean
}

// lastOxygenSaturation takes the first value of the chronologically last
// point as the saturation percentage; nil when no points exist
func lastOxygenSaturation(dataset *fitness.Dataset) *float64 {
	if len(dataset.Point) == 0 {
		return nil
	}

	values := dataset.Point[len(dataset.Point)-1].Value
	if len(values) == 0 {
		return nil
	}
	return values[0].FpVal
}

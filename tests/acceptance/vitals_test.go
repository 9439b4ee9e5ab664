package acceptance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/dto"
	"github.com/nmezhoud/healthlink/internal/fitness"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

// intDataset builds a dataset of single-value integer points
func intDataset(values ...int64) fitness.Dataset {
	var points []fitness.Point
	for _, v := range values {
		points = append(points, fitness.Point{Value: []fitness.Value{{IntVal: i64(v)}}})
	}
	return fitness.Dataset{Point: points}
}

// fpDataset builds a dataset of single-value float points
func fpDataset(values ...float64) fitness.Dataset {
	var points []fitness.Point
	for _, v := range values {
		points = append(points, fitness.Point{Value: []fitness.Value{{FpVal: f64(v)}}})
	}
	return fitness.Dataset{Point: points}
}

// seedAllDatasets configures one realistic reading set on the stub
func (s *Suite) seedAllDatasets() {
	s.Provider.SetDataset(fitness.DataSourceSteps, intDataset(1000, 2500))
	s.Provider.SetDataset(fitness.DataSourceCalories, fpDataset(10.5, 20.0))
	s.Provider.SetDataset(fitness.DataSourceBloodPressure, fitness.Dataset{Point: []fitness.Point{
		{Value: []fitness.Value{{FpVal: f64(118)}, {FpVal: f64(76)}}},
		{Value: []fitness.Value{{FpVal: f64(122)}, {FpVal: f64(80)}}},
	}})
	s.Provider.SetDataset(fitness.DataSourceHeartRate, fpDataset(70, 80))
	s.Provider.SetDataset(fitness.DataSourceOxygenSaturation, fpDataset(98))
}

func (s *Suite) fetchVitals(token, query string) (*http.Response, *domain.VitalsSnapshot) {
	resp := s.doRequest(http.MethodGet, "/api/v1/vitals"+query, token)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	var snapshot domain.VitalsSnapshot
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snapshot))
	return resp, &snapshot
}

func (s *Suite) TestVitals_PatientFetch() {
	token := s.linkAccount("vitals@example.com")
	s.seedAllDatasets()

	resp, snapshot := s.fetchVitals(token, "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.Require().NotNil(snapshot.Steps)
	s.Equal(int64(3500), *snapshot.Steps)
	s.Require().NotNil(snapshot.Calories)
	s.InDelta(30.5, *snapshot.Calories, 0.001)
	s.Require().NotNil(snapshot.Systolic)
	s.InDelta(122, *snapshot.Systolic, 0.001)
	s.Require().NotNil(snapshot.Diastolic)
	s.InDelta(80, *snapshot.Diastolic, 0.001)
	s.Require().NotNil(snapshot.HeartRate)
	s.InDelta(75, *snapshot.HeartRate, 0.001)
	s.Require().NotNil(snapshot.OxygenSaturation)
	s.InDelta(98, *snapshot.OxygenSaturation, 0.001)

	history, err := s.App.Repositories.Vitals.History(context.Background(), "vitals@example.com")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Require().NotNil(history[0])
	s.InDelta(75, *history[0], 0.001)
}

func (s *Suite) TestVitals_EmptyWindow() {
	token := s.linkAccount("empty@example.com")

	resp, snapshot := s.fetchVitals(token, "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	// An empty activity window legitimately means zero steps and calories;
	// the point-in-time metrics stay null.
	s.Require().NotNil(snapshot.Steps)
	s.Equal(int64(0), *snapshot.Steps)
	s.Require().NotNil(snapshot.Calories)
	s.Zero(*snapshot.Calories)
	s.Nil(snapshot.Systolic)
	s.Nil(snapshot.Diastolic)
	s.Nil(snapshot.HeartRate)
	s.Nil(snapshot.OxygenSaturation)

	// No heart rate observed, so no history sample either
	history, err := s.App.Repositories.Vitals.History(context.Background(), "empty@example.com")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *Suite) TestVitals_NotLinked() {
	token := s.registerPatient("unlinked@example.com")

	resp, _ := s.fetchVitals(token, "")
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestVitals_ProviderFailurePersistsNothing() {
	token := s.linkAccount("failing@example.com")
	s.Provider.FailDatasets(http.StatusInternalServerError)

	resp, _ := s.fetchVitals(token, "")
	defer resp.Body.Close()

	s.Equal(http.StatusBadGateway, resp.StatusCode)

	_, err := s.App.Repositories.Vitals.GetSnapshot(context.Background(), "failing@example.com")
	s.Error(err, "a failed cycle must leave no snapshot behind")
}

func (s *Suite) TestVitals_DoctorNeedsPatientParameter() {
	doctorToken := s.registerDoctor("vitalsdoc@example.com")

	resp, _ := s.fetchVitals(doctorToken, "")
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestVitals_DoctorForbiddenForUnassignedPatient() {
	doctorToken := s.registerDoctor("otherdoc@example.com")
	s.linkAccount("somepatient@example.com")

	resp, _ := s.fetchVitals(doctorToken, "?patient=somepatient@example.com")
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestVitals_AssignedDoctorCanFetch() {
	doctorToken := s.registerDoctor("assigneddoc@example.com")
	patientToken := s.linkAccount("assigned@example.com")
	s.assignPatient(patientToken, doctorToken, "assigneddoc@example.com")

	s.seedAllDatasets()

	resp, snapshot := s.fetchVitals(doctorToken, "?patient=assigned@example.com")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("assigned@example.com", snapshot.PatientEmail)
}

func (s *Suite) TestPrediction_RelaysVerbatim() {
	token := s.linkAccount("predict@example.com")
	s.seedAllDatasets()

	// One fetch cycle to grow the history
	resp, _ := s.fetchVitals(token, "")
	resp.Body.Close()

	predResp := s.doRequest(http.MethodGet, "/api/v1/vitals/prediction", token)
	defer predResp.Body.Close()
	s.Require().Equal(http.StatusOK, predResp.StatusCode)

	body, err := io.ReadAll(predResp.Body)
	s.Require().NoError(err)
	s.JSONEq(`{"prediction":"normal","confidence":0.97}`, string(body))
}

func (s *Suite) TestPrediction_UpstreamError() {
	token := s.linkAccount("prederr@example.com")
	s.Provider.SetPrediction(http.StatusInternalServerError, `{"error":"model down"}`, 0)

	resp := s.doRequest(http.MethodGet, "/api/v1/vitals/prediction", token)
	defer resp.Body.Close()

	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *Suite) TestPrediction_UpstreamTimeout() {
	token := s.linkAccount("predslow@example.com")
	s.Provider.SetPrediction(http.StatusOK, `{"prediction":"late"}`, 2*time.Second)

	resp := s.doRequest(http.MethodGet, "/api/v1/vitals/prediction", token)
	defer resp.Body.Close()

	s.Equal(http.StatusGatewayTimeout, resp.StatusCode)
}

// assignPatient files an assignment request from the patient and accepts it
// as the doctor
func (s *Suite) assignPatient(patientToken, doctorToken, doctorEmail string) {
	resp := s.postJSON("/api/v1/assignments", dto.CreateAssignmentRequest{DoctorEmail: doctorEmail}, patientToken)
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	pendingResp := s.doRequest(http.MethodGet, "/api/v1/assignments/pending", doctorToken)
	defer pendingResp.Body.Close()
	s.Require().Equal(http.StatusOK, pendingResp.StatusCode)

	var pending []dto.PendingRequestInfo
	s.Require().NoError(json.NewDecoder(pendingResp.Body).Decode(&pending))
	s.Require().NotEmpty(pending)

	acceptResp := s.postJSON("/api/v1/assignments/respond", dto.RespondAssignmentRequest{
		RequestID: pending[0].ID,
		Action:    "accept",
	}, doctorToken)
	defer acceptResp.Body.Close()
	s.Require().Equal(http.StatusOK, acceptResp.StatusCode)
}

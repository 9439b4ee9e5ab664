package acceptance

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nmezhoud/healthlink/internal/dto"
)

func (s *Suite) TestDoctors_DirectoryIsPublic() {
	s.registerDoctor("alpha@example.com")
	s.registerDoctor("beta@example.com")

	resp := s.doRequest(http.MethodGet, "/api/v1/doctors", "")
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var doctors []dto.DoctorInfo
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&doctors))
	s.Len(doctors, 2)
	s.Equal("Cardiology", doctors[0].Specialization)
}

func (s *Suite) TestAssignments_AcceptFlow() {
	doctorToken := s.registerDoctor("accepting@example.com")
	patientToken := s.registerPatient("requester@example.com")

	s.assignPatient(patientToken, doctorToken, "accepting@example.com")

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "requester@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(patient.DoctorEmail)
	s.Equal("accepting@example.com", *patient.DoctorEmail)

	listResp := s.doRequest(http.MethodGet, "/api/v1/patients", doctorToken)
	defer listResp.Body.Close()
	s.Require().Equal(http.StatusOK, listResp.StatusCode)

	var patients []dto.PatientInfo
	s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&patients))
	s.Require().Len(patients, 1)
	s.Equal("requester@example.com", patients[0].Email)
}

func (s *Suite) TestAssignments_RejectLeavesPatientUnassigned() {
	doctorToken := s.registerDoctor("rejecting@example.com")
	patientToken := s.registerPatient("rejected@example.com")

	resp := s.postJSON("/api/v1/assignments", dto.CreateAssignmentRequest{DoctorEmail: "rejecting@example.com"}, patientToken)
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	pendingResp := s.doRequest(http.MethodGet, "/api/v1/assignments/pending", doctorToken)
	var pending []dto.PendingRequestInfo
	s.Require().NoError(json.NewDecoder(pendingResp.Body).Decode(&pending))
	pendingResp.Body.Close()
	s.Require().Len(pending, 1)

	rejectResp := s.postJSON("/api/v1/assignments/respond", dto.RespondAssignmentRequest{
		RequestID: pending[0].ID,
		Action:    "reject",
	}, doctorToken)
	defer rejectResp.Body.Close()
	s.Require().Equal(http.StatusOK, rejectResp.StatusCode)

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "rejected@example.com")
	s.Require().NoError(err)
	s.Nil(patient.DoctorEmail)
}

func (s *Suite) TestAssignments_RespondTwiceRefused() {
	doctorToken := s.registerDoctor("twice@example.com")
	patientToken := s.registerPatient("eager@example.com")

	s.assignPatient(patientToken, doctorToken, "twice@example.com")

	pendingResp := s.doRequest(http.MethodGet, "/api/v1/assignments/pending", doctorToken)
	var pending []dto.PendingRequestInfo
	s.Require().NoError(json.NewDecoder(pendingResp.Body).Decode(&pending))
	pendingResp.Body.Close()
	s.Empty(pending, "accepted request must leave the pending list")
}

func (s *Suite) TestAssignments_OtherDoctorCannotRespond() {
	s.registerDoctor("addressee@example.com")
	intruderToken := s.registerDoctor("intruder@example.com")
	patientToken := s.registerPatient("contested@example.com")

	resp := s.postJSON("/api/v1/assignments", dto.CreateAssignmentRequest{DoctorEmail: "addressee@example.com"}, patientToken)
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	req, err := s.App.Repositories.Assignment.ListPendingByDoctor(context.Background(), "addressee@example.com")
	s.Require().NoError(err)
	s.Require().Len(req, 1)

	respondResp := s.postJSON("/api/v1/assignments/respond", dto.RespondAssignmentRequest{
		RequestID: req[0].ID,
		Action:    "accept",
	}, intruderToken)
	defer respondResp.Body.Close()
	s.Equal(http.StatusForbidden, respondResp.StatusCode)
}

func (s *Suite) TestAssignments_DoctorOnlyEndpointsRefusePatients() {
	patientToken := s.registerPatient("nodoctor@example.com")

	resp := s.doRequest(http.MethodGet, "/api/v1/assignments/pending", patientToken)
	defer resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestAssignments_PatientUnassignsSelf() {
	doctorToken := s.registerDoctor("leavable@example.com")
	patientToken := s.registerPatient("leaver@example.com")
	s.assignPatient(patientToken, doctorToken, "leavable@example.com")

	resp := s.doRequest(http.MethodDelete, "/api/v1/assignments", patientToken)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "leaver@example.com")
	s.Require().NoError(err)
	s.Nil(patient.DoctorEmail)
}

func (s *Suite) TestAssignments_DoctorUnassignsPatient() {
	doctorToken := s.registerDoctor("discharging@example.com")
	patientToken := s.registerPatient("discharged@example.com")
	s.assignPatient(patientToken, doctorToken, "discharging@example.com")

	resp := s.doRequest(http.MethodDelete, "/api/v1/assignments?patient=discharged@example.com", doctorToken)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	patient, err := s.App.Repositories.Patient.GetByEmail(context.Background(), "discharged@example.com")
	s.Require().NoError(err)
	s.Nil(patient.DoctorEmail)
}

func (s *Suite) TestAssignments_AlreadyAssignedCannotRequestAgain() {
	doctorToken := s.registerDoctor("first@example.com")
	s.registerDoctor("second@example.com")
	patientToken := s.registerPatient("loyal@example.com")
	s.assignPatient(patientToken, doctorToken, "first@example.com")

	resp := s.postJSON("/api/v1/assignments", dto.CreateAssignmentRequest{DoctorEmail: "second@example.com"}, patientToken)
	defer resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

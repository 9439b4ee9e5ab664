package service

import (
	"context"
	"fmt"

	"github.com/nmezhoud/healthlink/internal/domain"
	"github.com/nmezhoud/healthlink/internal/repository"
)

type fakePatientRepo struct {
	patients map[string]*domain.Patient
	created  []string
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[string]*domain.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, patient *domain.Patient) error {
	if _, ok := f.patients[patient.Email]; ok {
		return fmt.Errorf("patient exists: %w", repository.ErrDuplicateEmail)
	}
	f.patients[patient.Email] = patient
	f.created = append(f.created, patient.Email)
	return nil
}

func (f *fakePatientRepo) GetByEmail(_ context.Context, email string) (*domain.Patient, error) {
	patient, ok := f.patients[email]
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", email, repository.ErrNotFound)
	}
	return patient, nil
}

func (f *fakePatientRepo) SetAuthMethod(_ context.Context, email string, method domain.AuthMethod) error {
	patient, ok := f.patients[email]
	if !ok {
		return fmt.Errorf("patient %s: %w", email, repository.ErrNotFound)
	}
	patient.AuthMethod = method
	return nil
}

func (f *fakePatientRepo) AssignDoctor(_ context.Context, patientEmail string, doctorEmail *string) error {
	patient, ok := f.patients[patientEmail]
	if !ok {
		return fmt.Errorf("patient %s: %w", patientEmail, repository.ErrNotFound)
	}
	patient.DoctorEmail = doctorEmail
	return nil
}

func (f *fakePatientRepo) ListByDoctor(_ context.Context, doctorEmail string) ([]*domain.Patient, error) {
	var patients []*domain.Patient
	for _, patient := range f.patients {
		if patient.DoctorEmail != nil && *patient.DoctorEmail == doctorEmail {
			patients = append(patients, patient)
		}
	}
	return patients, nil
}

type fakeDoctorRepo struct {
	doctors map[string]*domain.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[string]*domain.Doctor)}
}

func (f *fakeDoctorRepo) Create(_ context.Context, doctor *domain.Doctor) error {
	if _, ok := f.doctors[doctor.Email]; ok {
		return fmt.Errorf("doctor exists: %w", repository.ErrDuplicateEmail)
	}
	f.doctors[doctor.Email] = doctor
	return nil
}

func (f *fakeDoctorRepo) GetByEmail(_ context.Context, email string) (*domain.Doctor, error) {
	doctor, ok := f.doctors[email]
	if !ok {
		return nil, fmt.Errorf("doctor %s: %w", email, repository.ErrNotFound)
	}
	return doctor, nil
}

func (f *fakeDoctorRepo) List(_ context.Context) ([]*domain.Doctor, error) {
	var doctors []*domain.Doctor
	for _, doctor := range f.doctors {
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

// fakeAssignmentRepo shares the patient repo so Accept can mirror the
// transactional status-flip-plus-assignment the SQL implementation does
type fakeAssignmentRepo struct {
	patients *fakePatientRepo
	requests map[string]*domain.AssignmentRequest
	next     int
}

func newFakeAssignmentRepo(patients *fakePatientRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		patients: patients,
		requests: make(map[string]*domain.AssignmentRequest),
	}
}

func (f *fakeAssignmentRepo) Create(_ context.Context, req *domain.AssignmentRequest) error {
	f.next++
	req.ID = fmt.Sprintf("request-%d", f.next)
	copied := *req
	f.requests[req.ID] = &copied
	return nil
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*domain.AssignmentRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, repository.ErrNotFound)
	}
	return req, nil
}

func (f *fakeAssignmentRepo) ListPendingByDoctor(_ context.Context, doctorEmail string) ([]*domain.AssignmentRequest, error) {
	var pending []*domain.AssignmentRequest
	for _, req := range f.requests {
		if req.DoctorEmail == doctorEmail && req.Status == domain.RequestPending {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

func (f *fakeAssignmentRepo) Accept(ctx context.Context, id string) error {
	req, ok := f.requests[id]
	if !ok {
		return fmt.Errorf("request %s: %w", id, repository.ErrNotFound)
	}
	if req.Status != domain.RequestPending {
		return fmt.Errorf("request %s: %w", id, repository.ErrRequestProcessed)
	}
	req.Status = domain.RequestAccepted
	return f.patients.AssignDoctor(ctx, req.PatientEmail, &req.DoctorEmail)
}

func (f *fakeAssignmentRepo) Reject(_ context.Context, id string) error {
	req, ok := f.requests[id]
	if !ok {
		return fmt.Errorf("request %s: %w", id, repository.ErrNotFound)
	}
	if req.Status != domain.RequestPending {
		return fmt.Errorf("request %s: %w", id, repository.ErrRequestProcessed)
	}
	req.Status = domain.RequestRejected
	return nil
}

type fakeCredentialRepo struct {
	creds   map[string]*domain.Credential
	upserts int
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: make(map[string]*domain.Credential)}
}

func (f *fakeCredentialRepo) Upsert(_ context.Context, cred *domain.Credential) error {
	f.upserts++
	stored, ok := f.creds[cred.PatientEmail]
	if ok && cred.RefreshToken == nil {
		// Mirrors the SQL merge: a null refresh token never clears a stored one
		merged := *cred
		merged.RefreshToken = stored.RefreshToken
		f.creds[cred.PatientEmail] = &merged
		return nil
	}
	copied := *cred
	f.creds[cred.PatientEmail] = &copied
	return nil
}

func (f *fakeCredentialRepo) GetByPatient(_ context.Context, patientEmail string) (*domain.Credential, error) {
	cred, ok := f.creds[patientEmail]
	if !ok {
		return nil, fmt.Errorf("credential for %s: %w", patientEmail, repository.ErrNotFound)
	}
	return cred, nil
}

type fakeVitalsRepo struct {
	snapshots map[string]*domain.VitalsSnapshot
	samples   map[string][]*float64
	history   []*float64
	saveErr   error
}

func newFakeVitalsRepo() *fakeVitalsRepo {
	return &fakeVitalsRepo{
		snapshots: make(map[string]*domain.VitalsSnapshot),
		samples:   make(map[string][]*float64),
	}
}

func (f *fakeVitalsRepo) UpsertSnapshot(_ context.Context, snapshot *domain.VitalsSnapshot) error {
	f.snapshots[snapshot.PatientEmail] = snapshot
	return nil
}

func (f *fakeVitalsRepo) AppendHeartRateSample(_ context.Context, patientEmail string, heartRate *float64) error {
	f.samples[patientEmail] = append(f.samples[patientEmail], heartRate)
	return nil
}

func (f *fakeVitalsRepo) SaveObservation(_ context.Context, snapshot *domain.VitalsSnapshot, heartRate *float64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snapshots[snapshot.PatientEmail] = snapshot
	if heartRate != nil {
		f.samples[snapshot.PatientEmail] = append(f.samples[snapshot.PatientEmail], heartRate)
	}
	return nil
}

func (f *fakeVitalsRepo) GetSnapshot(_ context.Context, patientEmail string) (*domain.VitalsSnapshot, error) {
	snapshot, ok := f.snapshots[patientEmail]
	if !ok {
		return nil, fmt.Errorf("snapshot for %s: %w", patientEmail, repository.ErrNotFound)
	}
	return snapshot, nil
}

func (f *fakeVitalsRepo) History(_ context.Context, _ string) ([]*float64, error) {
	return f.history, nil
}

type fakeStateStore struct {
	next   int
	issued map[string]bool
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{issued: make(map[string]bool)}
}

func (f *fakeStateStore) Issue(_ context.Context) (string, error) {
	f.next++
	state := fmt.Sprintf("state-%d", f.next)
	f.issued[state] = true
	return state, nil
}

func (f *fakeStateStore) Consume(_ context.Context, state string) (bool, error) {
	if !f.issued[state] {
		return false, nil
	}
	delete(f.issued, state)
	return true, nil
}

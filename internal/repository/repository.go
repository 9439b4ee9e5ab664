package repository

import (
	"github.com/nmezhoud/healthlink/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Patient    PatientRepository
	Doctor     DoctorRepository
	Credential CredentialRepository
	Vitals     VitalsRepository
	Assignment AssignmentRepository
	Token      TokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Patient:    NewPatientRepository(db),
		Doctor:     NewDoctorRepository(db),
		Credential: NewCredentialRepository(db),
		Vitals:     NewVitalsRepository(db),
		Assignment: NewAssignmentRepository(db),
		Token:      NewTokenRepository(db),
	}
}

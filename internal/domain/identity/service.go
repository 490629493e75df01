package identity

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/rules"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/notify"
)

type Service struct {
	patients PatientRepository
	profiles ProfileRepository
	events   notify.Publisher
	now      func() time.Time
}

func NewService(patients PatientRepository, profiles ProfileRepository, events notify.Publisher) *Service {
	return &Service{patients: patients, profiles: profiles, events: events, now: time.Now}
}

// newPatientNumber builds a registration number from the current timestamp
// plus a random suffix, e.g. PAT45123987042.
func newPatientNumber(now time.Time) string {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	if len(ts) > 8 {
		ts = ts[len(ts)-8:]
	}
	return fmt.Sprintf("PAT%s%03d", ts, rand.Intn(1000))
}

// -- Patients --

var validGenders = map[string]bool{"male": true, "female": true, "other": true}

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.DateOfBirth.After(s.now()) {
		return fmt.Errorf("date_of_birth cannot be in the future")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}

	// Timestamp-based numbers collide only when two registrations land in
	// the same millisecond with the same random suffix; retry covers it.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		p.PatientNumber = newPatientNumber(s.now())
		err = s.patients.Create(ctx, p)
		if err == nil {
			p.Age = rules.AgeYears(p.DateOfBirth, s.now())
			s.events.Changed(ctx, "patients")
			return nil
		}
		if !db.IsUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("could not allocate patient number: %w", err)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Age = rules.AgeYears(p.DateOfBirth, s.now())
	return p, nil
}

func (s *Service) GetPatientByNumber(ctx context.Context, number string) (*Patient, error) {
	p, err := s.patients.GetByPatientNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	p.Age = rules.AgeYears(p.DateOfBirth, s.now())
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	existing, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	p.PatientNumber = existing.PatientNumber
	if err := s.patients.Update(ctx, p); err != nil {
		return err
	}
	s.events.Changed(ctx, "patients")
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Changed(ctx, "patients")
	return nil
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	items, total, err := s.patients.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for _, p := range items {
		p.Age = rules.AgeYears(p.DateOfBirth, now)
	}
	return items, total, nil
}

// -- Profiles --

var validRoles = map[string]bool{
	"admin": true, "doctor": true, "nurse": true,
	"receptionist": true, "pharmacist": true, "inventory_manager": true,
}

func (s *Service) CreateProfile(ctx context.Context, p *Profile) error {
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if !validRoles[p.Role] {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return err
	}
	s.events.Changed(ctx, "profiles")
	return nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, p *Profile) error {
	if p.Role != "" && !validRoles[p.Role] {
		return fmt.Errorf("invalid role: %s", p.Role)
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return err
	}
	s.events.Changed(ctx, "profiles")
	return nil
}

func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Changed(ctx, "profiles")
	return nil
}

func (s *Service) SearchProfiles(ctx context.Context, params map[string]string, limit, offset int) ([]*Profile, int, error) {
	return s.profiles.Search(ctx, params, limit, offset)
}

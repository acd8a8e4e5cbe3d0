package services

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type VaccinationService struct {
	vaccinations ports.VaccinationRepository
	now          func() time.Time
	newToken     func() string
}

func NewVaccinationService(vaccinations ports.VaccinationRepository) *VaccinationService {
	return &VaccinationService{
		vaccinations: vaccinations,
		now:          time.Now,
		newToken:     newShortID,
	}
}

// MarkDone records the vaccine as given today. Marking an already completed
// vaccine returns the stored record unchanged.
func (s *VaccinationService) MarkDone(ctx context.Context, applicationNumber, vaccineName string) (*domain.VaccinationRecord, error) {
	if !domain.IsScheduledVaccine(vaccineName) {
		return nil, domain.NewValidationError("vaccine_name", "is not in the vaccination schedule")
	}

	for range maxIDAttempts {
		rec := domain.VaccinationRecord{
			ApplicationNumber: applicationNumber,
			VaccineName:       vaccineName,
			AdministeredDate:  domain.TruncateDay(s.now()),
			Token:             s.newToken(),
		}

		payload, err := json.Marshal(ports.RecordEvent{
			EventType:         ports.EventVaccinationCompleted,
			ApplicationNumber: rec.ApplicationNumber,
			VaccineName:       rec.VaccineName,
			Token:             rec.Token,
			OccurredAt:        s.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}

		stored, _, err := s.vaccinations.MarkVaccination(ctx, rec, payload)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return stored, nil
	}
	return nil, domain.ErrConflict
}

func (s *VaccinationService) MarkUndone(ctx context.Context, applicationNumber, vaccineName string) error {
	return s.vaccinations.UnmarkVaccination(ctx, applicationNumber, vaccineName)
}

func (s *VaccinationService) IsDone(ctx context.Context, applicationNumber, vaccineName string) (bool, error) {
	_, err := s.vaccinations.FindVaccination(ctx, applicationNumber, vaccineName)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *VaccinationService) ListCompleted(ctx context.Context, applicationNumber string) iter.Seq2[domain.VaccinationRecord, error] {
	return s.vaccinations.ListVaccinations(ctx, applicationNumber)
}

func (s *VaccinationService) Schedule() []domain.Milestone {
	return domain.Schedule()
}

package services

import (
	"context"
	"iter"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type HistoryService struct {
	visits ports.VisitRepository
}

func NewHistoryService(visits ports.VisitRepository) *HistoryService {
	return &HistoryService{visits: visits}
}

// Add appends a visit for an existing child and returns it with its new id.
func (s *HistoryService) Add(ctx context.Context, applicationNumber, doctorUsername string, fields domain.VisitFields) (*domain.VisitRecord, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	visit := domain.VisitRecord{
		ApplicationNumber: applicationNumber,
		DoctorUsername:    doctorUsername,
	}
	fields.Apply(&visit)

	id, err := s.visits.AddVisit(ctx, visit)
	if err != nil {
		return nil, err
	}
	visit.ID = id
	return &visit, nil
}

// Update overwrites the editable fields. Retracted visits are rejected with
// domain.ErrRetracted.
func (s *HistoryService) Update(ctx context.Context, id int64, fields domain.VisitFields) (*domain.VisitRecord, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	fields.VisitDate = domain.TruncateDay(fields.VisitDate)
	return s.visits.UpdateVisit(ctx, id, fields)
}

// Retract flags the visit as wrong. Retracting twice is a no-op.
func (s *HistoryService) Retract(ctx context.Context, id int64) error {
	return s.visits.RetractVisit(ctx, id)
}

func (s *HistoryService) Get(ctx context.Context, id int64) (*domain.VisitRecord, error) {
	return s.visits.FindVisit(ctx, id)
}

// List yields visits in ascending visit date, retracted ones included.
func (s *HistoryService) List(ctx context.Context, applicationNumber string) iter.Seq2[domain.VisitRecord, error] {
	return s.visits.ListVisits(ctx, applicationNumber)
}

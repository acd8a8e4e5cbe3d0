package services

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type ChildService struct {
	children ports.ChildRepository
	now      func() time.Time
	newID    func() string
}

func NewChildService(children ports.ChildRepository) *ChildService {
	return &ChildService{
		children: children,
		now:      time.Now,
		newID:    newShortID,
	}
}

// Upsert creates the record or replaces every field of the existing one.
func (s *ChildService) Upsert(ctx context.Context, child domain.ChildRecord) error {
	child.ApplicationNumber = strings.TrimSpace(child.ApplicationNumber)
	if child.LastTrackedDate.IsZero() {
		child.LastTrackedDate = s.now()
	}
	if err := child.Validate(s.now()); err != nil {
		return err
	}
	child.BirthDate = domain.TruncateDay(child.BirthDate)
	child.LastTrackedDate = domain.TruncateDay(child.LastTrackedDate)

	return s.children.UpsertChild(ctx, child)
}

func (s *ChildService) Get(ctx context.Context, applicationNumber string) (*domain.ChildRecord, error) {
	return s.children.FindChild(ctx, applicationNumber)
}

func (s *ChildService) ListAll(ctx context.Context) iter.Seq2[domain.ChildRecord, error] {
	return s.children.ListChildren(ctx)
}

// Delete removes the child and everything recorded against it.
func (s *ChildService) Delete(ctx context.Context, applicationNumber string) error {
	payload, err := json.Marshal(ports.RecordEvent{
		EventType:         ports.EventChildDeleted,
		ApplicationNumber: applicationNumber,
		OccurredAt:        s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.children.DeleteChild(ctx, applicationNumber, payload)
}

// NewApplicationNumber returns a number no stored child uses yet.
func (s *ChildService) NewApplicationNumber(ctx context.Context) (string, error) {
	for range maxIDAttempts {
		candidate := s.newID()
		_, err := s.children.FindChild(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", domain.ErrConflict
}

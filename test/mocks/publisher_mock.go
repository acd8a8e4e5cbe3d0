package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

// MockRecordEventPublisher captures published events instead of sending
// them to RabbitMQ.
type MockRecordEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []ports.RecordEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.RecordEventPublisher = (*MockRecordEventPublisher)(nil)

func NewMockRecordEventPublisher() *MockRecordEventPublisher {
	return &MockRecordEventPublisher{}
}

func (m *MockRecordEventPublisher) PublishRecordEvent(ctx context.Context, evt ports.RecordEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

// GetPublishedEvents returns a copy of the captured events.
func (m *MockRecordEventPublisher) GetPublishedEvents() []ports.RecordEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]ports.RecordEvent, len(m.PublishedEvents))
	copy(events, m.PublishedEvents)
	return events
}

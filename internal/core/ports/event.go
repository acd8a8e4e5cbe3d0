package ports

import (
	"context"
)

const (
	EventChildDeleted         = "child.deleted"
	EventVaccinationCompleted = "vaccination.completed"
)

type RecordEvent struct {
	EventType         string `json:"event_type"`
	ApplicationNumber string `json:"application_number"`
	VaccineName       string `json:"vaccine_name,omitempty"`
	Token             string `json:"token,omitempty"`
	OccurredAt        string `json:"occurred_at"`
}

type RecordEventPublisher interface {
	PublishRecordEvent(ctx context.Context, evt RecordEvent) error
}

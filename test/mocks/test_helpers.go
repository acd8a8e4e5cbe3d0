package mocks

import (
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestChild returns a valid child record named name.
func TestChild(applicationNumber, name string) domain.ChildRecord {
	return domain.ChildRecord{
		ApplicationNumber: applicationNumber,
		Name:              name,
		BirthPlace:        "Utrecht",
		BirthDate:         Date(2022, time.March, 1),
		WeightKg:          12.5,
		HeightCm:          85,
		PulseBPM:          110,
		LastTrackedDate:   Date(2024, time.January, 1),
	}
}

// TestVisit returns visit fields with every mandatory field set.
func TestVisit(visitDate time.Time) domain.VisitFields {
	return domain.VisitFields{
		VisitDate:      visitDate,
		Hospital:       "Wilhelmina Kinderziekenhuis",
		Specialization: "Pediatrics",
		Diagnosis:      "Otitis media",
		Reason:         "Ear pain",
		Medications:    "Amoxicillin",
	}
}

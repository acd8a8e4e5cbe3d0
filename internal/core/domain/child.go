package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const DateLayout = "2006-01-02"

// Growth metric bounds. Weight keeps an inclusive lower bound of zero, matching
// the form the records were originally captured with.
const (
	MinWeightKg = 0.0
	MaxWeightKg = 50.0
	MinHeightCm = 30.0
	MaxHeightCm = 150.0
	MinPulseBPM = 50
	MaxPulseBPM = 200
)

// MaxApplicationNumberLength is the widest application number the store keeps.
const MaxApplicationNumberLength = 16

// EarliestBirthDate is the first birth date the tracker accepts.
var EarliestBirthDate = time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)

type ChildRecord struct {
	ApplicationNumber string    `json:"application_number"`
	Name              string    `json:"name"`
	BirthPlace        string    `json:"birth_place"`
	BirthDate         time.Time `json:"birth_date"`
	WeightKg          float64   `json:"weight_kg"`
	HeightCm          float64   `json:"height_cm"`
	PulseBPM          int       `json:"pulse_bpm"`
	LastTrackedDate   time.Time `json:"last_tracked_date"`
}

// Validate checks every field against the accepted ranges. today bounds the
// birth date from above.
func (c ChildRecord) Validate(today time.Time) error {
	v := &ValidationError{}

	if strings.TrimSpace(c.ApplicationNumber) == "" {
		v.add("application_number", "is required")
	} else if utf8.RuneCountInString(c.ApplicationNumber) > MaxApplicationNumberLength {
		v.add("application_number", "must be at most 16 characters")
	}
	if c.WeightKg < MinWeightKg || c.WeightKg > MaxWeightKg {
		v.add("weight_kg", "must be between 0 and 50 kg")
	}
	if c.HeightCm < MinHeightCm || c.HeightCm > MaxHeightCm {
		v.add("height_cm", "must be between 30 and 150 cm")
	}
	if c.PulseBPM < MinPulseBPM || c.PulseBPM > MaxPulseBPM {
		v.add("pulse_bpm", "must be between 50 and 200 bpm")
	}

	birth := TruncateDay(c.BirthDate)
	if c.BirthDate.IsZero() {
		v.add("birth_date", "is required")
	} else if birth.Before(EarliestBirthDate) || birth.After(TruncateDay(today)) {
		v.add("birth_date", "must be between 2018-01-01 and today")
	}

	return v.err()
}

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

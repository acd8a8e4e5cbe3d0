package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/test/mocks"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestChildService(repo *mocks.MockRepository) *ChildService {
	s := NewChildService(repo)
	s.now = fixedClock(time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC))
	return s
}

func TestChildService_UpsertRoundTrip(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)
	ctx := context.Background()

	child := mocks.TestChild("AB12CD34", "Aria")
	if err := service.Upsert(ctx, child); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := service.Get(ctx, "AB12CD34")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != child {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", child, *got)
	}
}

func TestChildService_UpsertReplacesSnapshot(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)
	ctx := context.Background()

	first := mocks.TestChild("AB12CD34", "Aria")
	second := first
	second.WeightKg = 13.1
	second.BirthPlace = ""

	if err := service.Upsert(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.Upsert(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := service.Get(ctx, "AB12CD34")
	if *got != second {
		t.Errorf("expected latest snapshot, got %+v", *got)
	}

	count := 0
	for range service.ListAll(ctx) {
		count++
	}
	if count != 1 {
		t.Errorf("expected one record per application number, got %d", count)
	}
}

func TestChildService_UpsertRejectsInvalidInput(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)

	child := mocks.TestChild("AB12CD34", "Aria")
	child.PulseBPM = 20

	err := service.Upsert(context.Background(), child)
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(repo.UpsertChildCalls) != 0 {
		t.Error("invalid record must not be written")
	}
}

func TestChildService_UpsertDefaultsLastTracked(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)

	child := mocks.TestChild("AB12CD34", "Aria")
	child.LastTrackedDate = time.Time{}

	if err := service.Upsert(context.Background(), child); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := mocks.Date(2024, time.June, 15)
	if got := repo.UpsertChildCalls[0].LastTrackedDate; !got.Equal(want) {
		t.Errorf("expected last tracked %v, got %v", want, got)
	}
}

func TestChildService_GetMissing(t *testing.T) {
	service := newTestChildService(mocks.NewMockRepository())

	_, err := service.Get(context.Background(), "ZZ99ZZ99")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChildService_ListAllIsRestartable(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)
	ctx := context.Background()

	for _, n := range []string{"CCCC0003", "AAAA0001", "BBBB0002"} {
		repo.SeedChild(mocks.TestChild(n, "child"))
	}

	seq := service.ListAll(ctx)
	collect := func() []string {
		var out []string
		for c, err := range seq {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out = append(out, c.ApplicationNumber)
		}
		return out
	}

	first, second := collect(), collect()
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 records on both passes, got %v and %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("order changed between passes: %v vs %v", first, second)
		}
	}
}

func TestChildService_DeleteCascades(t *testing.T) {
	repo := mocks.NewMockRepository()
	children := newTestChildService(repo)
	history := NewHistoryService(repo)
	vaccinations := NewVaccinationService(repo)
	ctx := context.Background()

	repo.SeedChild(mocks.TestChild("AB12CD34", "Aria"))
	if _, err := history.Add(ctx, "AB12CD34", "drA", mocks.TestVisit(mocks.Date(2024, 1, 5))); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := vaccinations.MarkDone(ctx, "AB12CD34", "BCG"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := children.Delete(ctx, "AB12CD34"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := children.Get(ctx, "AB12CD34"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	for range history.List(ctx, "AB12CD34") {
		t.Error("expected no visits after delete")
	}
	for range vaccinations.ListCompleted(ctx, "AB12CD34") {
		t.Error("expected no vaccinations after delete")
	}

	last := repo.OutboxPayloads[len(repo.OutboxPayloads)-1]
	var evt ports.RecordEvent
	if err := json.Unmarshal(last, &evt); err != nil {
		t.Fatalf("invalid outbox payload: %v", err)
	}
	if evt.EventType != ports.EventChildDeleted || evt.ApplicationNumber != "AB12CD34" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestChildService_DeleteMissing(t *testing.T) {
	service := newTestChildService(mocks.NewMockRepository())

	if err := service.Delete(context.Background(), "ZZ99ZZ99"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChildService_NewApplicationNumber(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)
	repo.SeedChild(mocks.TestChild("TAKEN001", "Aria"))

	candidates := []string{"TAKEN001", "FREE0002"}
	service.newID = func() string {
		next := candidates[0]
		candidates = candidates[1:]
		return next
	}

	got, err := service.NewApplicationNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "FREE0002" {
		t.Errorf("expected the first unused number, got %q", got)
	}
}

func TestChildService_NewApplicationNumberGivesUp(t *testing.T) {
	repo := mocks.NewMockRepository()
	service := newTestChildService(repo)
	repo.SeedChild(mocks.TestChild("TAKEN001", "Aria"))
	service.newID = func() string { return "TAKEN001" }

	if _, err := service.NewApplicationNumber(context.Background()); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestNewShortID(t *testing.T) {
	id := newShortID()
	if len(id) != 8 {
		t.Fatalf("expected 8 characters, got %q", id)
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F') {
			t.Errorf("unexpected character %q in %q", r, id)
		}
	}
}

// Package mocks provides in-memory implementations of the port interfaces
// for testing services and handlers without Postgres, Redis or RabbitMQ.
package mocks

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

// MockRepository implements every repository port over maps guarded by one
// mutex, so each call is atomic like a database transaction.
type MockRepository struct {
	mu sync.Mutex

	accounts     map[string]domain.Account
	children     map[string]domain.ChildRecord
	visits       map[int64]domain.VisitRecord
	vaccinations map[vaccinationKey]domain.VaccinationRecord
	nextVisitID  int64

	// Outbox payloads written alongside deletions and new vaccinations.
	OutboxPayloads [][]byte

	// Call tracking for verification
	CreateAccountCalls   []domain.Account
	UpsertChildCalls     []domain.ChildRecord
	DeleteChildCalls     []string
	MarkVaccinationCalls []domain.VaccinationRecord

	// Error injection for testing error scenarios
	CreateAccountError   error
	FindAccountError     error
	UpsertChildError     error
	FindChildError       error
	DeleteChildError     error
	AddVisitError        error
	MarkVaccinationError error
	// MarkVaccinationErrors are returned one per call before
	// MarkVaccinationError is consulted.
	MarkVaccinationErrors []error
}

type vaccinationKey struct {
	applicationNumber string
	vaccineName       string
}

var (
	_ ports.AccountRepository     = (*MockRepository)(nil)
	_ ports.ChildRepository       = (*MockRepository)(nil)
	_ ports.VisitRepository       = (*MockRepository)(nil)
	_ ports.VaccinationRepository = (*MockRepository)(nil)
)

func NewMockRepository() *MockRepository {
	return &MockRepository{
		accounts:     make(map[string]domain.Account),
		children:     make(map[string]domain.ChildRecord),
		visits:       make(map[int64]domain.VisitRecord),
		vaccinations: make(map[vaccinationKey]domain.VaccinationRecord),
	}
}

// SeedChild stores a child without validation, for test setup.
func (m *MockRepository) SeedChild(child domain.ChildRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children[child.ApplicationNumber] = child
}

// VaccinationCount returns the number of stored vaccination rows.
func (m *MockRepository) VaccinationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vaccinations)
}

func (m *MockRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateAccountCalls = append(m.CreateAccountCalls, account)
	if m.CreateAccountError != nil {
		return m.CreateAccountError
	}
	if _, ok := m.accounts[account.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	m.accounts[account.Username] = account
	return nil
}

func (m *MockRepository) FindAccount(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindAccountError != nil {
		return nil, m.FindAccountError
	}
	account, ok := m.accounts[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &account, nil
}

func (m *MockRepository) UpsertChild(ctx context.Context, child domain.ChildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertChildCalls = append(m.UpsertChildCalls, child)
	if m.UpsertChildError != nil {
		return m.UpsertChildError
	}
	m.children[child.ApplicationNumber] = child
	return nil
}

func (m *MockRepository) FindChild(ctx context.Context, applicationNumber string) (*domain.ChildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindChildError != nil {
		return nil, m.FindChildError
	}
	child, ok := m.children[applicationNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &child, nil
}

func (m *MockRepository) ListChildren(ctx context.Context) iter.Seq2[domain.ChildRecord, error] {
	return func(yield func(domain.ChildRecord, error) bool) {
		m.mu.Lock()
		children := make([]domain.ChildRecord, 0, len(m.children))
		for _, c := range m.children {
			children = append(children, c)
		}
		m.mu.Unlock()

		slices.SortFunc(children, func(a, b domain.ChildRecord) int {
			return cmp.Compare(a.ApplicationNumber, b.ApplicationNumber)
		})
		for _, c := range children {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (m *MockRepository) DeleteChild(ctx context.Context, applicationNumber string, outboxPayload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteChildCalls = append(m.DeleteChildCalls, applicationNumber)
	if m.DeleteChildError != nil {
		return m.DeleteChildError
	}
	if _, ok := m.children[applicationNumber]; !ok {
		return domain.ErrNotFound
	}

	for key := range m.vaccinations {
		if key.applicationNumber == applicationNumber {
			delete(m.vaccinations, key)
		}
	}
	for id, v := range m.visits {
		if v.ApplicationNumber == applicationNumber {
			delete(m.visits, id)
		}
	}
	delete(m.children, applicationNumber)
	m.OutboxPayloads = append(m.OutboxPayloads, outboxPayload)
	return nil
}

func (m *MockRepository) AddVisit(ctx context.Context, visit domain.VisitRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AddVisitError != nil {
		return 0, m.AddVisitError
	}
	if _, ok := m.children[visit.ApplicationNumber]; !ok {
		return 0, domain.ErrNotFound
	}
	m.nextVisitID++
	visit.ID = m.nextVisitID
	visit.WrongFlag = false
	m.visits[visit.ID] = visit
	return visit.ID, nil
}

func (m *MockRepository) FindVisit(ctx context.Context, id int64) (*domain.VisitRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	visit, ok := m.visits[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &visit, nil
}

func (m *MockRepository) UpdateVisit(ctx context.Context, id int64, fields domain.VisitFields) (*domain.VisitRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	visit, ok := m.visits[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if visit.WrongFlag {
		return nil, domain.ErrRetracted
	}
	fields.Apply(&visit)
	m.visits[id] = visit
	return &visit, nil
}

func (m *MockRepository) RetractVisit(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	visit, ok := m.visits[id]
	if !ok {
		return domain.ErrNotFound
	}
	visit.WrongFlag = true
	m.visits[id] = visit
	return nil
}

func (m *MockRepository) ListVisits(ctx context.Context, applicationNumber string) iter.Seq2[domain.VisitRecord, error] {
	return func(yield func(domain.VisitRecord, error) bool) {
		m.mu.Lock()
		var visits []domain.VisitRecord
		for _, v := range m.visits {
			if v.ApplicationNumber == applicationNumber {
				visits = append(visits, v)
			}
		}
		m.mu.Unlock()

		slices.SortFunc(visits, func(a, b domain.VisitRecord) int {
			return cmp.Or(a.VisitDate.Compare(b.VisitDate), cmp.Compare(a.ID, b.ID))
		})
		for _, v := range visits {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (m *MockRepository) MarkVaccination(ctx context.Context, rec domain.VaccinationRecord, outboxPayload []byte) (*domain.VaccinationRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkVaccinationCalls = append(m.MarkVaccinationCalls, rec)
	if len(m.MarkVaccinationErrors) > 0 {
		err := m.MarkVaccinationErrors[0]
		m.MarkVaccinationErrors = m.MarkVaccinationErrors[1:]
		if err != nil {
			return nil, false, err
		}
	}
	if m.MarkVaccinationError != nil {
		return nil, false, m.MarkVaccinationError
	}
	if _, ok := m.children[rec.ApplicationNumber]; !ok {
		return nil, false, domain.ErrNotFound
	}

	key := vaccinationKey{rec.ApplicationNumber, rec.VaccineName}
	if existing, ok := m.vaccinations[key]; ok {
		return &existing, false, nil
	}
	for _, v := range m.vaccinations {
		if v.Token == rec.Token {
			return nil, false, domain.ErrConflict
		}
	}
	m.vaccinations[key] = rec
	m.OutboxPayloads = append(m.OutboxPayloads, outboxPayload)
	return &rec, true, nil
}

func (m *MockRepository) UnmarkVaccination(ctx context.Context, applicationNumber, vaccineName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vaccinations, vaccinationKey{applicationNumber, vaccineName})
	return nil
}

func (m *MockRepository) FindVaccination(ctx context.Context, applicationNumber, vaccineName string) (*domain.VaccinationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.vaccinations[vaccinationKey{applicationNumber, vaccineName}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *MockRepository) ListVaccinations(ctx context.Context, applicationNumber string) iter.Seq2[domain.VaccinationRecord, error] {
	return func(yield func(domain.VaccinationRecord, error) bool) {
		m.mu.Lock()
		var recs []domain.VaccinationRecord
		for _, v := range m.vaccinations {
			if v.ApplicationNumber == applicationNumber {
				recs = append(recs, v)
			}
		}
		m.mu.Unlock()

		slices.SortFunc(recs, func(a, b domain.VaccinationRecord) int {
			return cmp.Or(a.AdministeredDate.Compare(b.AdministeredDate), cmp.Compare(a.VaccineName, b.VaccineName))
		})
		for _, v := range recs {
			if !yield(v, nil) {
				return
			}
		}
	}
}

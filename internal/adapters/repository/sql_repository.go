package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/config"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

const (
	uniqueViolation = "23505"

	dataException pq.ErrorClass = "22"
)

// SQLRepository stores accounts and child records in PostgreSQL. Every call
// runs through a circuit breaker so a failing database is not hammered.
type SQLRepository struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var (
	_ ports.AccountRepository     = (*SQLRepository)(nil)
	_ ports.ChildRepository       = (*SQLRepository)(nil)
	_ ports.VisitRepository       = (*SQLRepository)(nil)
	_ ports.VaccinationRepository = (*SQLRepository)(nil)
)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
		cb: config.NewCircuitBreaker("PostgreSQL"),
	}
}

func (r *SQLRepository) run(fn func() error) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, rejectedInput(fn())
	})
	return err
}

// rejectedInput reports Postgres data exceptions (values too long, out of
// range or malformed) as a ValidationError so they never count against the
// breaker.
func rejectedInput(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Class() != dataException {
		return err
	}
	field := pqErr.Column
	if field == "" {
		field = "input"
	}
	return domain.NewValidationError(field, pqErr.Message)
}

func (r *SQLRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return r.run(func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// lockChild fails with domain.ErrNotFound unless the child exists, and keeps
// it from being deleted until tx ends.
func lockChild(ctx context.Context, tx *sql.Tx, applicationNumber string) error {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM child_records WHERE application_number = $1 FOR SHARE",
		applicationNumber,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, aggregateType, aggregateID, eventType string, payload []byte) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		aggregateType,
		aggregateID,
		eventType,
		string(payload),
	)
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

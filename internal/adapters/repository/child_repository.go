package repository

import (
	"context"
	"database/sql"
	"errors"
	"iter"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

const childColumns = "application_number, name, birth_place, birth_date, weight_kg, height_cm, pulse_bpm, last_tracked_date"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (domain.ChildRecord, error) {
	var c domain.ChildRecord
	err := row.Scan(
		&c.ApplicationNumber,
		&c.Name,
		&c.BirthPlace,
		&c.BirthDate,
		&c.WeightKg,
		&c.HeightCm,
		&c.PulseBPM,
		&c.LastTrackedDate,
	)
	return c, err
}

func (r *SQLRepository) UpsertChild(ctx context.Context, child domain.ChildRecord) error {
	return r.run(func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO child_records (`+childColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (application_number) DO UPDATE SET
				name = EXCLUDED.name,
				birth_place = EXCLUDED.birth_place,
				birth_date = EXCLUDED.birth_date,
				weight_kg = EXCLUDED.weight_kg,
				height_cm = EXCLUDED.height_cm,
				pulse_bpm = EXCLUDED.pulse_bpm,
				last_tracked_date = EXCLUDED.last_tracked_date`,
			child.ApplicationNumber,
			child.Name,
			child.BirthPlace,
			child.BirthDate,
			child.WeightKg,
			child.HeightCm,
			child.PulseBPM,
			child.LastTrackedDate,
		)
		return err
	})
}

func (r *SQLRepository) FindChild(ctx context.Context, applicationNumber string) (*domain.ChildRecord, error) {
	var child domain.ChildRecord
	err := r.run(func() error {
		var err error
		child, err = scanChild(r.db.QueryRowContext(ctx,
			"SELECT "+childColumns+" FROM child_records WHERE application_number = $1",
			applicationNumber,
		))
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return &child, nil
}

// ListChildren queries again every time the sequence is ranged over.
func (r *SQLRepository) ListChildren(ctx context.Context) iter.Seq2[domain.ChildRecord, error] {
	return func(yield func(domain.ChildRecord, error) bool) {
		var rows *sql.Rows
		err := r.run(func() error {
			var err error
			rows, err = r.db.QueryContext(ctx,
				"SELECT "+childColumns+" FROM child_records ORDER BY application_number")
			return err
		})
		if err != nil {
			yield(domain.ChildRecord{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			child, err := scanChild(rows)
			if !yield(child, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.ChildRecord{}, err)
		}
	}
}

// DeleteChild removes vaccinations, visits and the child in one transaction.
func (r *SQLRepository) DeleteChild(ctx context.Context, applicationNumber string, outboxPayload []byte) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM child_records WHERE application_number = $1 FOR UPDATE",
			applicationNumber,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM vaccination_records WHERE application_number = $1", applicationNumber); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM visit_records WHERE application_number = $1", applicationNumber); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM child_records WHERE application_number = $1", applicationNumber); err != nil {
			return err
		}

		return insertOutboxEvent(ctx, tx, "child", applicationNumber, ports.EventChildDeleted, outboxPayload)
	})
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"iter"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

const (
	vaccinationColumns  = "application_number, vaccine_name, administered_date, token"
	vaccinationTokenKey = "vaccination_records_token_key"
)

func scanVaccination(row rowScanner) (domain.VaccinationRecord, error) {
	var v domain.VaccinationRecord
	err := row.Scan(&v.ApplicationNumber, &v.VaccineName, &v.AdministeredDate, &v.Token)
	return v, err
}

// MarkVaccination relies on the primary key over (application_number,
// vaccine_name): of two concurrent inserts for the same pair exactly one
// creates a row and the other reads it back.
func (r *SQLRepository) MarkVaccination(ctx context.Context, rec domain.VaccinationRecord, outboxPayload []byte) (*domain.VaccinationRecord, bool, error) {
	var stored domain.VaccinationRecord
	var created bool

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockChild(ctx, tx, rec.ApplicationNumber); err != nil {
			return err
		}

		var err error
		stored, err = scanVaccination(tx.QueryRowContext(ctx,
			`INSERT INTO vaccination_records (`+vaccinationColumns+`)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (application_number, vaccine_name) DO NOTHING
			 RETURNING `+vaccinationColumns,
			rec.ApplicationNumber,
			rec.VaccineName,
			rec.AdministeredDate,
			rec.Token,
		))
		if isUniqueViolation(err, vaccinationTokenKey) {
			return domain.ErrConflict
		}
		if errors.Is(err, sql.ErrNoRows) {
			stored, err = scanVaccination(tx.QueryRowContext(ctx,
				"SELECT "+vaccinationColumns+" FROM vaccination_records WHERE application_number = $1 AND vaccine_name = $2",
				rec.ApplicationNumber,
				rec.VaccineName,
			))
			return err
		}
		if err != nil {
			return err
		}

		created = true
		return insertOutboxEvent(ctx, tx, "vaccination", rec.ApplicationNumber, ports.EventVaccinationCompleted, outboxPayload)
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

func (r *SQLRepository) UnmarkVaccination(ctx context.Context, applicationNumber, vaccineName string) error {
	return r.run(func() error {
		_, err := r.db.ExecContext(ctx,
			"DELETE FROM vaccination_records WHERE application_number = $1 AND vaccine_name = $2",
			applicationNumber,
			vaccineName,
		)
		return err
	})
}

func (r *SQLRepository) FindVaccination(ctx context.Context, applicationNumber, vaccineName string) (*domain.VaccinationRecord, error) {
	var rec domain.VaccinationRecord
	err := r.run(func() error {
		var err error
		rec, err = scanVaccination(r.db.QueryRowContext(ctx,
			"SELECT "+vaccinationColumns+" FROM vaccination_records WHERE application_number = $1 AND vaccine_name = $2",
			applicationNumber,
			vaccineName,
		))
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *SQLRepository) ListVaccinations(ctx context.Context, applicationNumber string) iter.Seq2[domain.VaccinationRecord, error] {
	return func(yield func(domain.VaccinationRecord, error) bool) {
		var rows *sql.Rows
		err := r.run(func() error {
			var err error
			rows, err = r.db.QueryContext(ctx,
				"SELECT "+vaccinationColumns+" FROM vaccination_records WHERE application_number = $1 ORDER BY administered_date, vaccine_name",
				applicationNumber,
			)
			return err
		})
		if err != nil {
			yield(domain.VaccinationRecord{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanVaccination(rows)
			if !yield(rec, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.VaccinationRecord{}, err)
		}
	}
}

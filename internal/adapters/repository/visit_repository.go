package repository

import (
	"context"
	"database/sql"
	"errors"
	"iter"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

const visitColumns = "id, application_number, visit_date, hospital, doctor_username, specialization, diagnosis, reason, medications, allergic_info, wrong_flag"

func scanVisit(row rowScanner) (domain.VisitRecord, error) {
	var v domain.VisitRecord
	err := row.Scan(
		&v.ID,
		&v.ApplicationNumber,
		&v.VisitDate,
		&v.Hospital,
		&v.DoctorUsername,
		&v.Specialization,
		&v.Diagnosis,
		&v.Reason,
		&v.Medications,
		&v.AllergicInfo,
		&v.WrongFlag,
	)
	return v, err
}

func (r *SQLRepository) AddVisit(ctx context.Context, visit domain.VisitRecord) (int64, error) {
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockChild(ctx, tx, visit.ApplicationNumber); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`INSERT INTO visit_records
				(application_number, visit_date, hospital, doctor_username, specialization, diagnosis, reason, medications, allergic_info)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id`,
			visit.ApplicationNumber,
			visit.VisitDate,
			visit.Hospital,
			visit.DoctorUsername,
			visit.Specialization,
			visit.Diagnosis,
			visit.Reason,
			visit.Medications,
			visit.AllergicInfo,
		).Scan(&id)
	})
	return id, err
}

func (r *SQLRepository) FindVisit(ctx context.Context, id int64) (*domain.VisitRecord, error) {
	var visit domain.VisitRecord
	err := r.run(func() error {
		var err error
		visit, err = scanVisit(r.db.QueryRowContext(ctx,
			"SELECT "+visitColumns+" FROM visit_records WHERE id = $1", id))
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// UpdateVisit locks the row so a concurrent retraction cannot slip in
// between the flag check and the write.
func (r *SQLRepository) UpdateVisit(ctx context.Context, id int64, fields domain.VisitFields) (*domain.VisitRecord, error) {
	var visit domain.VisitRecord
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var wrong bool
		err := tx.QueryRowContext(ctx,
			"SELECT wrong_flag FROM visit_records WHERE id = $1 FOR UPDATE", id,
		).Scan(&wrong)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if wrong {
			return domain.ErrRetracted
		}

		visit, err = scanVisit(tx.QueryRowContext(ctx,
			`UPDATE visit_records SET
				visit_date = $2,
				hospital = $3,
				specialization = $4,
				diagnosis = $5,
				reason = $6,
				medications = $7,
				allergic_info = $8
			 WHERE id = $1
			 RETURNING `+visitColumns,
			id,
			fields.VisitDate,
			fields.Hospital,
			fields.Specialization,
			fields.Diagnosis,
			fields.Reason,
			fields.Medications,
			fields.AllergicInfo,
		))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *SQLRepository) RetractVisit(ctx context.Context, id int64) error {
	return r.run(func() error {
		res, err := r.db.ExecContext(ctx, "UPDATE visit_records SET wrong_flag = TRUE WHERE id = $1", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *SQLRepository) ListVisits(ctx context.Context, applicationNumber string) iter.Seq2[domain.VisitRecord, error] {
	return func(yield func(domain.VisitRecord, error) bool) {
		var rows *sql.Rows
		err := r.run(func() error {
			var err error
			rows, err = r.db.QueryContext(ctx,
				"SELECT "+visitColumns+" FROM visit_records WHERE application_number = $1 ORDER BY visit_date, id",
				applicationNumber,
			)
			return err
		})
		if err != nil {
			yield(domain.VisitRecord{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			visit, err := scanVisit(rows)
			if !yield(visit, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.VisitRecord{}, err)
		}
	}
}

package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/test/mocks"
)

func newMockRepo(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLRepository(db), mock
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

var childRowColumns = []string{"application_number", "name", "birth_place", "birth_date", "weight_kg", "height_cm", "pulse_bpm", "last_tracked_date"}

func childRow(c domain.ChildRecord) []driver.Value {
	return []driver.Value{c.ApplicationNumber, c.Name, c.BirthPlace, c.BirthDate, c.WeightKg, c.HeightCm, c.PulseBPM, c.LastTrackedDate}
}

func TestCreateAccount(t *testing.T) {
	repo, mock := newMockRepo(t)
	account := domain.Account{Username: "drA", PasswordHash: "hash", Role: domain.RoleDoctor, CreatedAt: time.Now()}

	mock.ExpectExec(q("INSERT INTO accounts")).
		WithArgs("drA", "hash", domain.RoleDoctor, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateAccount(context.Background(), account))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(q("INSERT INTO accounts")).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "accounts_pkey"})

	err := repo.CreateAccount(context.Background(), domain.Account{Username: "drA"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAccountMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("FROM accounts WHERE username = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "role", "created_at"}))

	_, err := repo.FindAccount(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertChild(t *testing.T) {
	repo, mock := newMockRepo(t)
	child := mocks.TestChild("AB12CD34", "Aria")

	mock.ExpectExec(q("ON CONFLICT (application_number) DO UPDATE SET")).
		WithArgs(child.ApplicationNumber, child.Name, child.BirthPlace, child.BirthDate,
			child.WeightKg, child.HeightCm, child.PulseBPM, child.LastTrackedDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpsertChild(context.Background(), child))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindChild(t *testing.T) {
	repo, mock := newMockRepo(t)
	child := mocks.TestChild("AB12CD34", "Aria")

	mock.ExpectQuery(q("SELECT " + childColumns + " FROM child_records WHERE application_number = $1")).
		WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows(childRowColumns).AddRow(childRow(child)...))

	got, err := repo.FindChild(context.Background(), "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, child, *got)
}

func TestFindChildMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(q("FROM child_records WHERE application_number = $1")).
		WillReturnRows(sqlmock.NewRows(childRowColumns))

	_, err := repo.FindChild(context.Background(), "ZZ99ZZ99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListChildrenRequeriesEachRange(t *testing.T) {
	repo, mock := newMockRepo(t)
	a, b := mocks.TestChild("AAAA0001", "Aria"), mocks.TestChild("BBBB0002", "Noah")

	for range 2 {
		rows := sqlmock.NewRows(childRowColumns).
			AddRow(childRow(a)...).
			AddRow(childRow(b)...)
		mock.ExpectQuery(q("FROM child_records ORDER BY application_number")).WillReturnRows(rows)
	}

	seq := repo.ListChildren(context.Background())
	for range 2 {
		var got []string
		for c, err := range seq {
			require.NoError(t, err)
			got = append(got, c.ApplicationNumber)
		}
		assert.Equal(t, []string{"AAAA0001", "BBBB0002"}, got)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListChildrenQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(q("FROM child_records")).WillReturnError(errors.New("connection reset"))

	var errs []error
	for _, err := range repo.ListChildren(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "connection reset")
}

func TestDeleteChildCascadesInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	payload := []byte(`{"event_type":"child.deleted"}`)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs("AB12CD34").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(q("DELETE FROM vaccination_records")).WithArgs("AB12CD34").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM visit_records")).WithArgs("AB12CD34").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM child_records")).WithArgs("AB12CD34").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO outbox_events")).
		WithArgs(sqlmock.AnyArg(), "child", "AB12CD34", "child.deleted", string(payload)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteChild(context.Background(), "AB12CD34", payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChildMissingRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := repo.DeleteChild(context.Background(), "ZZ99ZZ99", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteChildFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(q("DELETE FROM vaccination_records")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM visit_records")).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.DeleteChild(context.Background(), "AB12CD34", nil)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreakerIgnoresExpectedErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	for range 5 {
		mock.ExpectQuery(q("FROM child_records WHERE application_number = $1")).
			WillReturnRows(sqlmock.NewRows(childRowColumns))
	}
	for range 5 {
		_, err := repo.FindChild(context.Background(), "ZZ99ZZ99")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, "closed", repo.cb.State().String())
}

func TestDataExceptionIsValidation(t *testing.T) {
	repo, mock := newMockRepo(t)

	for range 5 {
		mock.ExpectExec(q("INSERT INTO accounts")).
			WillReturnError(&pq.Error{Code: "22001", Message: "value too long for type character varying(100)"})
	}
	for range 5 {
		err := repo.CreateAccount(context.Background(), domain.Account{Username: "drA"})
		require.True(t, domain.IsValidation(err), "expected ValidationError, got %v", err)
	}
	assert.Equal(t, "closed", repo.cb.State().String())

	a := mocks.TestChild("AB12CD34", "Aria")
	mock.ExpectQuery(q("FROM child_records WHERE application_number = $1")).
		WillReturnRows(sqlmock.NewRows(childRowColumns).AddRow(childRow(a)...))

	_, err := repo.FindChild(context.Background(), "AB12CD34")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreakerOpensOnOutage(t *testing.T) {
	repo, mock := newMockRepo(t)

	for range 3 {
		mock.ExpectQuery(q("FROM child_records")).WillReturnError(sql.ErrConnDone)
	}
	for range 3 {
		_, err := repo.FindChild(context.Background(), "AB12CD34")
		require.Error(t, err)
	}

	_, err := repo.FindChild(context.Background(), "AB12CD34")
	assert.EqualError(t, err, "circuit breaker is open")
}

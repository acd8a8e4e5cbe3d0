package ports

import (
	"context"
	"iter"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account domain.Account) error
	FindAccount(ctx context.Context, username string) (*domain.Account, error)
}

type ChildRepository interface {
	UpsertChild(ctx context.Context, child domain.ChildRecord) error
	FindChild(ctx context.Context, applicationNumber string) (*domain.ChildRecord, error)
	ListChildren(ctx context.Context) iter.Seq2[domain.ChildRecord, error]
	// DeleteChild removes the child together with its visits and
	// vaccinations, writing outboxPayload in the same transaction.
	DeleteChild(ctx context.Context, applicationNumber string, outboxPayload []byte) error
}

type VisitRepository interface {
	AddVisit(ctx context.Context, visit domain.VisitRecord) (int64, error)
	FindVisit(ctx context.Context, id int64) (*domain.VisitRecord, error)
	UpdateVisit(ctx context.Context, id int64, fields domain.VisitFields) (*domain.VisitRecord, error)
	RetractVisit(ctx context.Context, id int64) error
	ListVisits(ctx context.Context, applicationNumber string) iter.Seq2[domain.VisitRecord, error]
}

type VaccinationRepository interface {
	// MarkVaccination inserts rec unless the (application number, vaccine)
	// pair already exists, in which case the stored record is returned and
	// created is false. outboxPayload is only written when a row is created.
	MarkVaccination(ctx context.Context, rec domain.VaccinationRecord, outboxPayload []byte) (stored *domain.VaccinationRecord, created bool, err error)
	UnmarkVaccination(ctx context.Context, applicationNumber, vaccineName string) error
	FindVaccination(ctx context.Context, applicationNumber, vaccineName string) (*domain.VaccinationRecord, error)
	ListVaccinations(ctx context.Context, applicationNumber string) iter.Seq2[domain.VaccinationRecord, error]
}

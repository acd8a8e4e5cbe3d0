package ports

import (
	"context"
	"iter"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

type CredentialService interface {
	Register(ctx context.Context, username, password string, role domain.Role) error
	Verify(ctx context.Context, username, password string, claimedRole domain.Role) (*domain.Account, error)
}

// AccessService is the only entry point handlers use for record operations.
// Every record call takes the caller's session.
type AccessService interface {
	Login(ctx context.Context, username, password string, role domain.Role, applicationNumber string) (*domain.Session, error)
	Resume(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, session *domain.Session) error

	GenerateApplicationNumber(ctx context.Context, session *domain.Session) (string, error)
	SaveChild(ctx context.Context, session *domain.Session, child domain.ChildRecord) error
	GetChild(ctx context.Context, session *domain.Session, applicationNumber string) (*domain.ChildRecord, error)
	ListChildren(ctx context.Context, session *domain.Session) (iter.Seq2[domain.ChildRecord, error], error)
	ArmDelete(ctx context.Context, session *domain.Session, applicationNumber string) (*domain.PendingDelete, error)
	ConfirmDelete(ctx context.Context, session *domain.Session, applicationNumber string) error

	AddVisit(ctx context.Context, session *domain.Session, applicationNumber string, fields domain.VisitFields) (*domain.VisitRecord, error)
	UpdateVisit(ctx context.Context, session *domain.Session, id int64, fields domain.VisitFields) (*domain.VisitRecord, error)
	RetractVisit(ctx context.Context, session *domain.Session, id int64) error
	ListVisits(ctx context.Context, session *domain.Session, applicationNumber string) (iter.Seq2[domain.VisitRecord, error], error)
	GetVisit(ctx context.Context, session *domain.Session, id int64) (*domain.VisitRecord, error)

	MarkVaccination(ctx context.Context, session *domain.Session, applicationNumber, vaccineName string) (*domain.VaccinationRecord, error)
	UnmarkVaccination(ctx context.Context, session *domain.Session, applicationNumber, vaccineName string) error
	ListVaccinations(ctx context.Context, session *domain.Session, applicationNumber string) (iter.Seq2[domain.VaccinationRecord, error], error)
	IsVaccinated(ctx context.Context, session *domain.Session, applicationNumber, vaccineName string) (bool, error)
}

package services

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

// AccessController authenticates sessions and gates every record operation
// on the caller's role. Doctors may read and write any record; patients may
// only read the record bound at login.
type AccessController struct {
	credentials  ports.CredentialService
	children     *ChildService
	history      *HistoryService
	vaccinations *VaccinationService
	sessions     ports.SessionStore

	sessionTTL time.Duration
	confirmTTL time.Duration
	now        func() time.Time
}

var _ ports.AccessService = (*AccessController)(nil)

func NewAccessController(
	credentials ports.CredentialService,
	children *ChildService,
	history *HistoryService,
	vaccinations *VaccinationService,
	sessions ports.SessionStore,
	sessionTTL, confirmTTL time.Duration,
) *AccessController {
	return &AccessController{
		credentials:  credentials,
		children:     children,
		history:      history,
		vaccinations: vaccinations,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
		confirmTTL:   confirmTTL,
		now:          time.Now,
	}
}

// Login verifies the credentials and, for patients, that a child with the
// given application number is recorded under the patient's username.
func (a *AccessController) Login(ctx context.Context, username, password string, role domain.Role, applicationNumber string) (*domain.Session, error) {
	session := domain.NewSession(uuid.NewString())
	session.State = domain.StateAuthenticating

	account, err := a.credentials.Verify(ctx, username, password, role)
	if err != nil {
		return nil, err
	}

	switch account.Role {
	case domain.RoleDoctor:
		session.State = domain.StateDoctor
	case domain.RolePatient:
		child, err := a.children.Get(ctx, applicationNumber)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccessDenied
		}
		if err != nil {
			return nil, err
		}
		if child.Name != account.Username {
			return nil, domain.ErrAccessDenied
		}
		session.State = domain.StatePatient
		session.BoundApplicationNumber = child.ApplicationNumber
	default:
		return nil, domain.ErrAccessDenied
	}

	session.Username = account.Username
	session.Role = account.Role

	if err := a.sessions.SaveSession(ctx, session, a.sessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

// Resume loads a previously authenticated session.
func (a *AccessController) Resume(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := a.sessions.LoadSession(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	if !session.Authenticated() {
		return nil, domain.ErrAccessDenied
	}
	return session, nil
}

// Logout forgets the stored session and resets session to anonymous.
func (a *AccessController) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	if err := a.sessions.DeleteSession(ctx, session.ID); err != nil {
		return err
	}
	session.Clear()
	return nil
}

func (a *AccessController) GenerateApplicationNumber(ctx context.Context, session *domain.Session) (string, error) {
	if err := session.CanWrite(); err != nil {
		return "", err
	}
	return a.children.NewApplicationNumber(ctx)
}

func (a *AccessController) SaveChild(ctx context.Context, session *domain.Session, child domain.ChildRecord) error {
	if err := session.CanWrite(); err != nil {
		return err
	}
	return a.children.Upsert(ctx, child)
}

func (a *AccessController) GetChild(ctx context.Context, session *domain.Session, applicationNumber string) (*domain.ChildRecord, error) {
	if err := session.CanRead(applicationNumber); err != nil {
		return nil, err
	}
	return a.children.Get(ctx, applicationNumber)
}

// ListChildren yields every record for doctors and only the bound record for
// patients.
func (a *AccessController) ListChildren(ctx context.Context, session *domain.Session) (iter.Seq2[domain.ChildRecord, error], error) {
	if !session.Authenticated() {
		return nil, domain.ErrAccessDenied
	}
	if session.State == domain.StateDoctor {
		return a.children.ListAll(ctx), nil
	}

	bound := session.BoundApplicationNumber
	return func(yield func(domain.ChildRecord, error) bool) {
		child, err := a.children.Get(ctx, bound)
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		if err != nil {
			yield(domain.ChildRecord{}, err)
			return
		}
		yield(*child, nil)
	}, nil
}

// ArmDelete is the first step of deleting a child's records. The deletion
// must be confirmed with ConfirmDelete before the returned expiry.
func (a *AccessController) ArmDelete(ctx context.Context, session *domain.Session, applicationNumber string) (*domain.PendingDelete, error) {
	if err := session.CanWrite(); err != nil {
		return nil, err
	}
	if _, err := a.children.Get(ctx, applicationNumber); err != nil {
		return nil, err
	}

	pending := &domain.PendingDelete{
		ApplicationNumber: applicationNumber,
		ExpiresAt:         a.now().Add(a.confirmTTL),
	}
	previous := session.PendingDelete
	session.PendingDelete = pending
	if err := a.sessions.UpdateSession(ctx, session); err != nil {
		session.PendingDelete = previous
		return nil, err
	}
	return pending, nil
}

// ConfirmDelete removes the child, its visits and its vaccinations when the
// session armed a deletion of the same record that has not expired.
func (a *AccessController) ConfirmDelete(ctx context.Context, session *domain.Session, applicationNumber string) error {
	if err := session.CanWrite(); err != nil {
		return err
	}

	pending := session.PendingDelete
	if pending == nil || pending.ApplicationNumber != applicationNumber || a.now().After(pending.ExpiresAt) {
		return domain.ErrNotArmed
	}

	// The request is consumed before deleting, so a logged-out session
	// deletes nothing.
	session.PendingDelete = nil
	if err := a.sessions.UpdateSession(ctx, session); err != nil {
		session.PendingDelete = pending
		return err
	}
	return a.children.Delete(ctx, applicationNumber)
}

func (a *AccessController) AddVisit(ctx context.Context, session *domain.Session, applicationNumber string, fields domain.VisitFields) (*domain.VisitRecord, error) {
	if err := session.CanWrite(); err != nil {
		return nil, err
	}
	return a.history.Add(ctx, applicationNumber, session.Username, fields)
}

func (a *AccessController) UpdateVisit(ctx context.Context, session *domain.Session, id int64, fields domain.VisitFields) (*domain.VisitRecord, error) {
	if err := session.CanWrite(); err != nil {
		return nil, err
	}
	return a.history.Update(ctx, id, fields)
}

func (a *AccessController) RetractVisit(ctx context.Context, session *domain.Session, id int64) error {
	if err := session.CanWrite(); err != nil {
		return err
	}
	return a.history.Retract(ctx, id)
}

func (a *AccessController) ListVisits(ctx context.Context, session *domain.Session, applicationNumber string) (iter.Seq2[domain.VisitRecord, error], error) {
	if err := session.CanRead(applicationNumber); err != nil {
		return nil, err
	}
	return a.history.List(ctx, applicationNumber), nil
}

// GetVisit returns one visit. Patients get domain.ErrAccessDenied for any
// visit outside their bound record, including ids that do not exist.
func (a *AccessController) GetVisit(ctx context.Context, session *domain.Session, id int64) (*domain.VisitRecord, error) {
	if !session.Authenticated() {
		return nil, domain.ErrAccessDenied
	}
	visit, err := a.history.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) && session.State != domain.StateDoctor {
		return nil, domain.ErrAccessDenied
	}
	if err != nil {
		return nil, err
	}
	if err := session.CanRead(visit.ApplicationNumber); err != nil {
		return nil, err
	}
	return visit, nil
}

func (a *AccessController) MarkVaccination(ctx context.Context, session *domain.Session, applicationNumber, vaccineName string) (*domain.VaccinationRecord, error) {
	if err := session.CanWrite(); err != nil {
		return nil, err
	}
	return a.vaccinations.MarkDone(ctx, applicationNumber, vaccineName)
}

func (a *AccessController) UnmarkVaccination(ctx context.Context, session *domain.Session, applicationNumber, vaccineName string) error {
	if err := session.CanWrite(); err != nil {
		return err
	}
	return a.vaccinations.MarkUndone(ctx, applicationNumber, vaccineName)
}

func (a *AccessController) ListVaccinations(ctx context.Context, session *domain.Session, applicationNumber string) (iter.Seq2[domain.VaccinationRecord, error], error) {
	if err := session.CanRead(applicationNumber); err != nil {
		return nil, err
	}
	return a.vaccinations.ListCompleted(ctx, applicationNumber), nil
}

// IsVaccinated reports whether the scheduled vaccine was given to the child.
func (a *AccessController) IsVaccinated(ctx context.Context, session *domain.Session, applicationNumber, vaccineName string) (bool, error) {
	if err := session.CanRead(applicationNumber); err != nil {
		return false, err
	}
	if !domain.IsScheduledVaccine(vaccineName) {
		return false, domain.NewValidationError("vaccine_name", "is not in the vaccination schedule")
	}
	if _, err := a.children.Get(ctx, applicationNumber); err != nil {
		return false, err
	}
	return a.vaccinations.IsDone(ctx, applicationNumber, vaccineName)
}

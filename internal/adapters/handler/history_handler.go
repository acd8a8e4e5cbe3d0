package handler

import (
	"net/http"
	"strconv"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type HistoryHandler struct {
	access ports.AccessService
}

func NewHistoryHandler(access ports.AccessService) *HistoryHandler {
	return &HistoryHandler{access: access}
}

type VisitRequest struct {
	VisitDate      string `json:"visit_date"`
	Hospital       string `json:"hospital"`
	Specialization string `json:"specialization"`
	Diagnosis      string `json:"diagnosis"`
	Reason         string `json:"reason"`
	Medications    string `json:"medications"`
	AllergicInfo   string `json:"allergic_info"`
}

// VisitResponse marks retracted visits as not editable so clients render
// them read-only with a warning.
type VisitResponse struct {
	ID                int64  `json:"id"`
	ApplicationNumber string `json:"application_number"`
	VisitDate         string `json:"visit_date"`
	Hospital          string `json:"hospital"`
	DoctorUsername    string `json:"doctor_username"`
	Specialization    string `json:"specialization"`
	Diagnosis         string `json:"diagnosis"`
	Reason            string `json:"reason"`
	Medications       string `json:"medications"`
	AllergicInfo      string `json:"allergic_info"`
	WrongFlag         bool   `json:"wrong_flag"`
	Editable          bool   `json:"editable"`
}

func toVisitResponse(v domain.VisitRecord, canWrite bool) VisitResponse {
	return VisitResponse{
		ID:                v.ID,
		ApplicationNumber: v.ApplicationNumber,
		VisitDate:         formatDate(v.VisitDate),
		Hospital:          v.Hospital,
		DoctorUsername:    v.DoctorUsername,
		Specialization:    v.Specialization,
		Diagnosis:         v.Diagnosis,
		Reason:            v.Reason,
		Medications:       v.Medications,
		AllergicInfo:      v.AllergicInfo,
		WrongFlag:         v.WrongFlag,
		Editable:          canWrite && !v.WrongFlag,
	}
}

func (req VisitRequest) fields() (domain.VisitFields, error) {
	visitDate, err := parseDate("visit_date", req.VisitDate)
	if err != nil {
		return domain.VisitFields{}, err
	}
	return domain.VisitFields{
		VisitDate:      visitDate,
		Hospital:       req.Hospital,
		Specialization: req.Specialization,
		Diagnosis:      req.Diagnosis,
		Reason:         req.Reason,
		Medications:    req.Medications,
		AllergicInfo:   req.AllergicInfo,
	}, nil
}

func visitID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid visit id"})
		return 0, false
	}
	return id, true
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	visits, err := h.access.ListVisits(r.Context(), session, r.PathValue("number"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	canWrite := session.CanWrite() == nil
	out := []VisitResponse{}
	for visit, err := range visits {
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, toVisitResponse(visit, canWrite))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := visitID(w, r)
	if !ok {
		return
	}
	visit, err := h.access.GetVisit(r.Context(), session, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisitResponse(*visit, session.CanWrite() == nil))
}

func (h *HistoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req VisitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields, err := req.fields()
	if err != nil {
		writeError(w, r, err)
		return
	}

	visit, err := h.access.AddVisit(r.Context(), session, r.PathValue("number"), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVisitResponse(*visit, true))
}

func (h *HistoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := visitID(w, r)
	if !ok {
		return
	}

	var req VisitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields, err := req.fields()
	if err != nil {
		writeError(w, r, err)
		return
	}

	visit, err := h.access.UpdateVisit(r.Context(), session, id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisitResponse(*visit, true))
}

func (h *HistoryHandler) Retract(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := visitID(w, r)
	if !ok {
		return
	}
	if err := h.access.RetractVisit(r.Context(), session, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Visit marked as wrong"})
}

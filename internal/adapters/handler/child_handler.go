package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type ChildHandler struct {
	access ports.AccessService
}

func NewChildHandler(access ports.AccessService) *ChildHandler {
	return &ChildHandler{access: access}
}

type ChildRequest struct {
	Name            string  `json:"name"`
	BirthPlace      string  `json:"birth_place"`
	BirthDate       string  `json:"birth_date"`
	WeightKg        float64 `json:"weight_kg"`
	HeightCm        float64 `json:"height_cm"`
	PulseBPM        int     `json:"pulse_bpm"`
	LastTrackedDate string  `json:"last_tracked_date,omitempty"`
}

type ChildResponse struct {
	ApplicationNumber string  `json:"application_number"`
	Name              string  `json:"name"`
	BirthPlace        string  `json:"birth_place"`
	BirthDate         string  `json:"birth_date"`
	WeightKg          float64 `json:"weight_kg"`
	HeightCm          float64 `json:"height_cm"`
	PulseBPM          int     `json:"pulse_bpm"`
	LastTrackedDate   string  `json:"last_tracked_date"`
}

type ApplicationNumberResponse struct {
	ApplicationNumber string `json:"application_number"`
}

// NotFoundResponse tells the client to offer the "create new record" flow.
type NotFoundResponse struct {
	Error             string `json:"error"`
	ApplicationNumber string `json:"application_number"`
	CreateNew         bool   `json:"create_new"`
}

type DeleteRequestResponse struct {
	ApplicationNumber string    `json:"application_number"`
	ConfirmBefore     time.Time `json:"confirm_before"`
}

func toChildResponse(c domain.ChildRecord) ChildResponse {
	return ChildResponse{
		ApplicationNumber: c.ApplicationNumber,
		Name:              c.Name,
		BirthPlace:        c.BirthPlace,
		BirthDate:         formatDate(c.BirthDate),
		WeightKg:          c.WeightKg,
		HeightCm:          c.HeightCm,
		PulseBPM:          c.PulseBPM,
		LastTrackedDate:   formatDate(c.LastTrackedDate),
	}
}

func (h *ChildHandler) GenerateApplicationNumber(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	number, err := h.access.GenerateApplicationNumber(r.Context(), session)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ApplicationNumberResponse{ApplicationNumber: number})
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	children, err := h.access.ListChildren(r.Context(), session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := []ChildResponse{}
	for child, err := range children {
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, toChildResponse(child))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	number := r.PathValue("number")

	child, err := h.access.GetChild(r.Context(), session, number)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, NotFoundResponse{
			Error:             "no record for this application number",
			ApplicationNumber: number,
			CreateNew:         session.CanWrite() == nil,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildResponse(*child))
}

// Save creates or fully replaces the child's details.
func (h *ChildHandler) Save(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req ChildRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	birthDate, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lastTracked, err := parseDate("last_tracked_date", req.LastTrackedDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	child := domain.ChildRecord{
		ApplicationNumber: r.PathValue("number"),
		Name:              req.Name,
		BirthPlace:        req.BirthPlace,
		BirthDate:         birthDate,
		WeightKg:          req.WeightKg,
		HeightCm:          req.HeightCm,
		PulseBPM:          req.PulseBPM,
		LastTrackedDate:   lastTracked,
	}
	if err := h.access.SaveChild(r.Context(), session, child); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.access.GetChild(r.Context(), session, child.ApplicationNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChildResponse(*saved))
}

// RequestDelete arms the deletion; Delete confirms it.
func (h *ChildHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	pending, err := h.access.ArmDelete(r.Context(), session, r.PathValue("number"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, DeleteRequestResponse{
		ApplicationNumber: pending.ApplicationNumber,
		ConfirmBefore:     pending.ExpiresAt.UTC(),
	})
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := h.access.ConfirmDelete(r.Context(), session, r.PathValue("number")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

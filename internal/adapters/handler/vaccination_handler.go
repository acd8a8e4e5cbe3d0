package handler

import (
	"net/http"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

type VaccinationHandler struct {
	access ports.AccessService
}

func NewVaccinationHandler(access ports.AccessService) *VaccinationHandler {
	return &VaccinationHandler{access: access}
}

type VaccinationResponse struct {
	VaccineName      string `json:"vaccine_name"`
	AdministeredDate string `json:"administered_date"`
	Token            string `json:"token"`
}

type ChecklistItem struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

type ChecklistGroup struct {
	Label    string          `json:"label"`
	Vaccines []ChecklistItem `json:"vaccines"`
}

type VaccinationStatusResponse struct {
	VaccineName string `json:"vaccine_name"`
	Done        bool   `json:"done"`
}

type VaccinationsResponse struct {
	Completed []VaccinationResponse `json:"completed"`
	Checklist []ChecklistGroup      `json:"checklist"`
}

func toVaccinationResponse(v domain.VaccinationRecord) VaccinationResponse {
	return VaccinationResponse{
		VaccineName:      v.VaccineName,
		AdministeredDate: formatDate(v.AdministeredDate),
		Token:            v.Token,
	}
}

func (h *VaccinationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Schedule())
}

// List returns the completed vaccinations plus the schedule with each
// vaccine ticked off when done.
func (h *VaccinationHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	records, err := h.access.ListVaccinations(r.Context(), session, r.PathValue("number"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := VaccinationsResponse{Completed: []VaccinationResponse{}}
	done := make(map[string]bool)
	for rec, err := range records {
		if err != nil {
			writeError(w, r, err)
			return
		}
		done[rec.VaccineName] = true
		resp.Completed = append(resp.Completed, toVaccinationResponse(rec))
	}

	for _, m := range domain.Schedule() {
		group := ChecklistGroup{Label: m.Label}
		for _, name := range m.Vaccines {
			group.Vaccines = append(group.Vaccines, ChecklistItem{Name: name, Done: done[name]})
		}
		resp.Checklist = append(resp.Checklist, group)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *VaccinationHandler) Status(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	vaccine := r.PathValue("vaccine")
	done, err := h.access.IsVaccinated(r.Context(), session, r.PathValue("number"), vaccine)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VaccinationStatusResponse{VaccineName: vaccine, Done: done})
}

func (h *VaccinationHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	rec, err := h.access.MarkVaccination(r.Context(), session, r.PathValue("number"), r.PathValue("vaccine"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVaccinationResponse(*rec))
}

func (h *VaccinationHandler) MarkUndone(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := h.access.UnmarkVaccination(r.Context(), session, r.PathValue("number"), r.PathValue("vaccine")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

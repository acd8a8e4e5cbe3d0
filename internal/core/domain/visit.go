package domain

import (
	"strings"
	"time"
)

type VisitRecord struct {
	ID                int64     `json:"id"`
	ApplicationNumber string    `json:"application_number"`
	VisitDate         time.Time `json:"visit_date"`
	Hospital          string    `json:"hospital"`
	DoctorUsername    string    `json:"doctor_username"`
	Specialization    string    `json:"specialization"`
	Diagnosis         string    `json:"diagnosis"`
	Reason            string    `json:"reason"`
	Medications       string    `json:"medications"`
	AllergicInfo      string    `json:"allergic_info"`
	WrongFlag         bool      `json:"wrong_flag"`
}

// VisitFields are the editable fields of a visit.
type VisitFields struct {
	VisitDate      time.Time `json:"visit_date"`
	Hospital       string    `json:"hospital"`
	Specialization string    `json:"specialization"`
	Diagnosis      string    `json:"diagnosis"`
	Reason         string    `json:"reason"`
	Medications    string    `json:"medications"`
	AllergicInfo   string    `json:"allergic_info"`
}

// Validate requires visit date, hospital, specialization and reason.
func (f VisitFields) Validate() error {
	v := &ValidationError{}
	if f.VisitDate.IsZero() {
		v.add("visit_date", "is required")
	}
	if strings.TrimSpace(f.Hospital) == "" {
		v.add("hospital", "is required")
	}
	if strings.TrimSpace(f.Specialization) == "" {
		v.add("specialization", "is required")
	}
	if strings.TrimSpace(f.Reason) == "" {
		v.add("reason", "is required")
	}
	return v.err()
}

// Apply overwrites the editable fields of r.
func (f VisitFields) Apply(r *VisitRecord) {
	r.VisitDate = TruncateDay(f.VisitDate)
	r.Hospital = f.Hospital
	r.Specialization = f.Specialization
	r.Diagnosis = f.Diagnosis
	r.Reason = f.Reason
	r.Medications = f.Medications
	r.AllergicInfo = f.AllergicInfo
}

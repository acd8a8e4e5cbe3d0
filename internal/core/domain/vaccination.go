package domain

import "time"

type VaccinationRecord struct {
	ApplicationNumber string    `json:"application_number"`
	VaccineName       string    `json:"vaccine_name"`
	AdministeredDate  time.Time `json:"administered_date"`
	Token             string    `json:"token"`
}

// Milestone groups the vaccines conventionally due at one age.
type Milestone struct {
	Label    string   `json:"label"`
	Vaccines []string `json:"vaccines"`
}

var schedule = []Milestone{
	{Label: "At Birth", Vaccines: []string{"BCG", "Hepatitis B"}},
	{Label: "6 Weeks", Vaccines: []string{"Polio 1", "DPT 1", "Hepatitis B 2"}},
	{Label: "10 Weeks", Vaccines: []string{"Polio 2", "DPT 2", "Hepatitis B 3"}},
	{Label: "14 Weeks", Vaccines: []string{"Polio 3", "DPT 3"}},
	{Label: "9 Months", Vaccines: []string{"Measles 1"}},
	{Label: "15 Months", Vaccines: []string{"MMR 1", "Varicella 1"}},
	{Label: "18 Months", Vaccines: []string{"DPT Booster", "Polio Booster"}},
	{Label: "4-5 Years", Vaccines: []string{"MMR 2", "Varicella 2"}},
}

// Schedule returns a copy of the vaccination schedule in milestone order.
func Schedule() []Milestone {
	out := make([]Milestone, len(schedule))
	for i, m := range schedule {
		out[i] = Milestone{Label: m.Label, Vaccines: append([]string(nil), m.Vaccines...)}
	}
	return out
}

// IsScheduledVaccine reports whether name appears in the schedule.
func IsScheduledVaccine(name string) bool {
	for _, m := range schedule {
		for _, v := range m.Vaccines {
			if v == name {
				return true
			}
		}
	}
	return false
}

package models

import "strings"

type MedicationEntry struct {
	Name string `json:"name" bson:"name"`
	Dose string `json:"dose" bson:"dose"`
	Freq string `json:"freq" bson:"freq"`
}

func (m MedicationEntry) Trimmed() MedicationEntry {
	return MedicationEntry{
		Name: strings.TrimSpace(m.Name),
		Dose: strings.TrimSpace(m.Dose),
		Freq: strings.TrimSpace(m.Freq),
	}
}

// Line is the "name dose freq" form used in exports and the print view.
func (m MedicationEntry) Line() string {
	return m.Name + " " + m.Dose + " " + m.Freq
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

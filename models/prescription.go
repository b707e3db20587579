package models

type Prescription struct {
	ID      int64             `json:"id" bson:"id"`
	Date    string            `json:"date" bson:"date"`
	Doctor  string            `json:"doctor" bson:"doctor"`
	Patient string            `json:"patient" bson:"patient"`
	Notes   string            `json:"notes" bson:"notes"`
	Meds    []MedicationEntry `json:"meds" bson:"meds"`
}

// Matches reports whether filter occurs in patient+doctor, ignoring case.
func (p Prescription) Matches(filter string) bool {
	return containsFold(p.Patient+p.Doctor, filter)
}

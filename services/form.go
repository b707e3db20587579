package services

import (
	"strings"

	"PrescriptionPad/models"
)

// Form is the editable prescription form. Meds holds the medication rows in
// display order, including rows that are still blank.
type Form struct {
	Doctor  string
	Patient string
	Notes   string
	Meds    []models.MedicationEntry
}

// NewForm returns the form shown on first load: empty fields, one blank row.
func NewForm() Form {
	f := Form{}
	f.AddMedRow()
	return f
}

func (f *Form) AddMedRow(initial ...models.MedicationEntry) {
	row := models.MedicationEntry{}
	if len(initial) > 0 {
		row = initial[0]
	}
	f.Meds = append(f.Meds, row)
}

// RemoveMedRow drops only the row at index; out of range is a no-op.
func (f *Form) RemoveMedRow(index int) bool {
	if index < 0 || index >= len(f.Meds) {
		return false
	}
	f.Meds = append(f.Meds[:index], f.Meds[index+1:]...)
	return true
}

/*
* Project the form into a candidate prescription
* Every field is trimmed and rows without a medicine name are dropped
 */
func (f Form) Read() models.Prescription {
	return normalize(models.Prescription{
		Doctor:  f.Doctor,
		Patient: f.Patient,
		Notes:   f.Notes,
		Meds:    f.Meds,
	})
}

// Populate replaces the form contents with a copy of p.
func (f *Form) Populate(p models.Prescription) {
	f.Doctor = p.Doctor
	f.Patient = p.Patient
	f.Notes = p.Notes
	f.Meds = nil
	for _, m := range p.Meds {
		f.AddMedRow(m)
	}
}

func (f *Form) Reset() {
	*f = Form{}
}

func (f Form) clone() Form {
	out := f
	out.Meds = append([]models.MedicationEntry(nil), f.Meds...)
	return out
}

func normalize(p models.Prescription) models.Prescription {
	out := models.Prescription{
		ID:      p.ID,
		Date:    p.Date,
		Doctor:  strings.TrimSpace(p.Doctor),
		Patient: strings.TrimSpace(p.Patient),
		Notes:   strings.TrimSpace(p.Notes),
		Meds:    []models.MedicationEntry{},
	}
	for _, m := range p.Meds {
		m = m.Trimmed()
		if m.Name == "" {
			continue
		}
		out.Meds = append(out.Meds, m)
	}
	return out
}

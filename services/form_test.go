package services

import (
	"testing"

	"PrescriptionPad/models"

	"github.com/stretchr/testify/assert"
)

func TestNewFormHasOneBlankRow(t *testing.T) {
	f := NewForm()
	assert.Equal(t, []models.MedicationEntry{{}}, f.Meds)
	assert.Empty(t, f.Read().Meds)
}

func TestFormReadTrimsAndDropsUnnamedRows(t *testing.T) {
	f := Form{
		Doctor:  "  Dr. A ",
		Patient: "\tBob\n",
		Notes:   " after food ",
		Meds: []models.MedicationEntry{
			{Name: " Aspirin ", Dose: " 100mg", Freq: "daily "},
			{Name: "   ", Dose: "5mg", Freq: "weekly"},
			{Name: "Ibuprofen"},
		},
	}

	got := f.Read()

	assert.Equal(t, "Dr. A", got.Doctor)
	assert.Equal(t, "Bob", got.Patient)
	assert.Equal(t, "after food", got.Notes)
	assert.Equal(t, []models.MedicationEntry{
		{Name: "Aspirin", Dose: "100mg", Freq: "daily"},
		{Name: "Ibuprofen"},
	}, got.Meds)
	assert.Zero(t, got.ID)
	assert.Empty(t, got.Date)
	assert.Equal(t, " Aspirin ", f.Meds[0].Name, "reading must not change the form")
}

func TestFormRows(t *testing.T) {
	f := Form{}
	f.AddMedRow()
	f.AddMedRow(models.MedicationEntry{Name: "Aspirin", Dose: "100mg", Freq: "daily"})
	f.AddMedRow(models.MedicationEntry{Name: "Ibuprofen"})
	assert.Len(t, f.Meds, 3)

	assert.True(t, f.RemoveMedRow(0))
	assert.Equal(t, "Aspirin", f.Meds[0].Name)
	assert.Equal(t, "Ibuprofen", f.Meds[1].Name)

	assert.False(t, f.RemoveMedRow(2))
	assert.False(t, f.RemoveMedRow(-1))
	assert.Len(t, f.Meds, 2)
}

func TestFormPopulateAndReset(t *testing.T) {
	p := models.Prescription{
		ID:      1,
		Doctor:  "Dr. A",
		Patient: "Bob",
		Notes:   "rest",
		Meds:    []models.MedicationEntry{{Name: "Aspirin", Dose: "100mg", Freq: "daily"}},
	}
	f := NewForm()
	f.Populate(p)
	assert.Equal(t, "Dr. A", f.Doctor)
	assert.Equal(t, p.Meds, f.Meds)

	f.Meds[0].Name = "changed"
	assert.Equal(t, "Aspirin", p.Meds[0].Name, "form rows must not alias the record")

	f.Reset()
	assert.Equal(t, Form{}, f)
}

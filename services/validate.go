package services

import "PrescriptionPad/models"

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

/*
* Return the first failing rule in priority order
* doctor, then patient, then at least one medicine
* Empty string means the prescription is valid
 */
func Validate(p models.Prescription) string {
	if p.Doctor == "" {
		return DOCTOR_NAME_REQUIRED
	}
	if p.Patient == "" {
		return PATIENT_NAME_REQUIRED
	}
	if len(p.Meds) == 0 {
		return MEDICINE_REQUIRED
	}
	return ""
}

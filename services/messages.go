package services

const (
	STORAGE_KEY   = "prescriptions"
	LOGGED_IN_KEY = "loggedIn"

	DOCTOR_NAME_REQUIRED         = "Doctor name required"
	PATIENT_NAME_REQUIRED        = "Patient name required"
	MEDICINE_REQUIRED            = "At least 1 medicine required"
	FILL_FORM_BEFORE_PRINT       = "Fill doctor, patient & meds first"
	PRESCRIPTION_SAVED           = "Saved ✔"
	PRESCRIPTION_DELETED         = "Deleted ✔"
	PRESCRIPTIONS_CLEARED        = "All prescriptions deleted"
	FORM_CLEARED                 = "Form cleared"
	NO_PRESCRIPTIONS             = "No prescriptions"
	UNABLE_TO_SAVE_PRESCRIPTION  = "Unable to save prescription"
	UNABLE_TO_LOAD_PRESCRIPTIONS = "Unable to load prescriptions"
	CONFIRM_CLEAR_ALL            = "Delete all prescriptions?"
	CONFIRM_CLEAR_FORM           = "Clear form?"
	INVALID_CREDENTIALS          = "Invalid credentials"
	COULD_NOT_VERIFY_CREDENTIALS = "Could not verify credentials"
)

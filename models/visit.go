package models

// Visit holds the consultation notes submitted for summary generation. It exists only
// for the lifetime of one request/response pair and is never persisted.
type Visit struct {
	PatientName string `json:"patient_name" binding:"required"`
	DateOfVisit string `json:"date_of_visit" binding:"required"`
	Notes       string `json:"notes" binding:"required"`
}

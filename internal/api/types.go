package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
)

type CreateBookingRequest struct {
	PatientID       string `json:"patient_id"`
	ClinicID        string `json:"clinic_id"`
	AppointmentType string `json:"appointment_type"`
	Date            string `json:"date"`       // YYYY-MM-DD
	StartTime       string `json:"start_time"` // HH:MM or HH:MM:SS
}

type UpdateNotesRequest struct {
	Notes *string `json:"notes"`
}

type BookingResponse struct {
	ID              uuid.UUID `json:"id"`
	PractitionerID  uuid.UUID `json:"practitioner_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	AppointmentType string    `json:"appointment_type"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	BookingID       uuid.UUID `json:"booking_id"`
	PractitionerID  uuid.UUID `json:"practitioner_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	AppointmentType string    `json:"appointment_type"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	IsConsultation  bool      `json:"is_consultation"`
	Notes           string    `json:"notes"`
}

type AvailabilityResponse struct {
	Date            string   `json:"date"`
	AppointmentType string   `json:"appointment_type"`
	StartTimes      []string `json:"start_times"`
}

type ViolationResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error      string              `json:"error"`
	Details    string              `json:"details,omitempty"`
	Violations []ViolationResponse `json:"violations,omitempty"`
}

func toBookingResponse(b appointment.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              b.ID(),
		AppointmentType: string(b.Type()),
		Date:            b.Date().String(),
		StartTime:       appointment.FormatTimeOfDay(b.StartTime()),
		EndTime:         appointment.FormatTimeOfDay(b.EndTime()),
	}
	if p := b.Practitioner(); p != nil {
		resp.PractitionerID = p.ID()
	}
	if p := b.Patient(); p != nil {
		resp.PatientID = p.ID()
	}
	return resp
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:              a.ID(),
		BookingID:       a.BookingID(),
		AppointmentType: string(a.Type()),
		Date:            a.Date().String(),
		StartTime:       appointment.FormatTimeOfDay(a.StartTime()),
		EndTime:         appointment.FormatTimeOfDay(a.EndTime()),
		DurationMinutes: int(a.Duration() / time.Minute),
		IsConsultation:  a.IsConsultation(),
		Notes:           a.Notes(),
	}
	if p := a.Practitioner(); p != nil {
		resp.PractitionerID = p.ID()
	}
	if p := a.Patient(); p != nil {
		resp.PatientID = p.ID()
	}
	return resp
}

func toViolationResponses(verr *appointment.ValidationError) []ViolationResponse {
	out := make([]ViolationResponse, len(verr.Violations))
	for i, v := range verr.Violations {
		out[i] = ViolationResponse{Code: string(v.Code), Message: v.Message()}
	}
	return out
}

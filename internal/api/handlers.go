package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/logging"
)

// BookingService is the part of appointment.Service the handlers use.
type BookingService interface {
	BookAppointment(ctx context.Context, req appointment.BookRequest) (*appointment.Booking, error)
	CancelBooking(ctx context.Context, practitionerID, bookingID uuid.UUID) (bool, error)
	ListBookings(ctx context.Context, practitionerID uuid.UUID, date civil.Date) ([]appointment.Booking, error)
	AvailableTimes(ctx context.Context, practitionerID, clinicID uuid.UUID, date civil.Date, kind appointment.AppointmentType) ([]civil.Time, error)
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*appointment.Appointment, error)
	UpdateAppointmentNotes(ctx context.Context, appointmentID uuid.UUID, notes string) (*appointment.Appointment, error)
}

func createBookingHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := uuidParam(w, r, "id", "invalid_practitioner_id")
		if !ok {
			return
		}

		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
			return
		}
		date, err := civil.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		start, err := appointment.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time must be HH:MM or HH:MM:SS")
			return
		}

		booking, err := svc.BookAppointment(r.Context(), appointment.BookRequest{
			PractitionerID: practitionerID,
			PatientID:      patientID,
			ClinicID:       clinicID,
			Type:           appointmentType(req.AppointmentType),
			Date:           date,
			StartTime:      start,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(*booking))
	}
}

func listBookingsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := uuidParam(w, r, "id", "invalid_practitioner_id")
		if !ok {
			return
		}
		date, err := civil.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date query parameter must be YYYY-MM-DD")
			return
		}

		bookings, err := svc.ListBookings(r.Context(), practitionerID, date)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		resp := make([]BookingResponse, len(bookings))
		for i, b := range bookings {
			resp[i] = toBookingResponse(b)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func cancelBookingHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := uuidParam(w, r, "id", "invalid_practitioner_id")
		if !ok {
			return
		}
		bookingID, ok := uuidParam(w, r, "bookingID", "invalid_booking_id")
		if !ok {
			return
		}

		removed, err := svc.CancelBooking(r.Context(), practitionerID, bookingID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, "booking_not_found", "practitioner holds no such booking")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func availabilityHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, ok := uuidParam(w, r, "id", "invalid_practitioner_id")
		if !ok {
			return
		}

		q := r.URL.Query()
		clinicID, err := uuid.Parse(q.Get("clinic_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
			return
		}
		date, err := civil.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date query parameter must be YYYY-MM-DD")
			return
		}
		kind, err := appointment.ParseAppointmentType(q.Get("appointment_type"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_type", err.Error())
			return
		}

		times, err := svc.AvailableTimes(r.Context(), practitionerID, clinicID, date, kind)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		resp := AvailabilityResponse{
			Date:            date.String(),
			AppointmentType: string(kind),
			StartTimes:      make([]string, len(times)),
		}
		for i, t := range times {
			resp.StartTimes[i] = appointment.FormatTimeOfDay(t)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func confirmBookingHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, ok := uuidParam(w, r, "id", "invalid_booking_id")
		if !ok {
			return
		}

		appt, err := svc.ConfirmBooking(r.Context(), bookingID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func updateNotesHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		var req UpdateNotesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "body must be {\"notes\": \"...\"}")
			return
		}

		appt, err := svc.UpdateAppointmentNotes(r.Context(), appointmentID, *req.Notes)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// appointmentType keeps unknown names as given so the booking rules can
// report them.
func appointmentType(raw string) appointment.AppointmentType {
	if kind, err := appointment.ParseAppointmentType(raw); err == nil {
		return kind
	}
	return appointment.AppointmentType(raw)
}

func uuidParam(w http.ResponseWriter, r *http.Request, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *appointment.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "validation_failed",
			Violations: toViolationResponses(verr),
		})
	case errors.Is(err, appointment.ErrPractitionerNotFound):
		writeError(w, http.StatusNotFound, "practitioner_not_found", err.Error())
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrClinicNotFound):
		writeError(w, http.StatusNotFound, "clinic_not_found", err.Error())
	case errors.Is(err, appointment.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentExists):
		writeError(w, http.StatusConflict, "appointment_exists", err.Error())
	case errors.Is(err, appointment.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", "practitioner schedule is being changed, please retry shortly")
	case errors.Is(err, appointment.ErrPrecondition):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		logging.FromContext(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

package handler

import (
	"net/http"
	"strings"

	"github.com/go-care-nosql/internal/application/booking"
	"github.com/go-care-nosql/internal/domain"
	appmiddleware "github.com/go-care-nosql/internal/transport/http/middleware"
)

// BookingHandler serves appointment, lab and medicine bookings.
type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler { return &BookingHandler{svc: svc} }

// ownsBody rejects a save whose body names a different owner than the token,
// and stores the token's spelling of the email on the booking.
func ownsBody(w http.ResponseWriter, r *http.Request, email *string) bool {
	claims, ok := appmiddleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return false
	}
	if !strings.EqualFold(*email, claims.Email) {
		writeError(w, http.StatusForbidden, "Forbidden.")
		return false
	}
	*email = claims.Email
	return true
}

// ownerEmail is the {email} path parameter in the lowercase form accounts
// and tokens carry.
func ownerEmail(r *http.Request) string {
	return strings.ToLower(appmiddleware.PathParam(r, "email"))
}

// writeList encodes an empty result as [] rather than null.
func writeList[T any](w http.ResponseWriter, list []T) {
	if list == nil {
		list = []T{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ── Appointments ──────────────────────────────────────────────────────────

func (h *BookingHandler) SaveAppointment(w http.ResponseWriter, r *http.Request) {
	var a domain.Appointment
	if !decodeJSON(w, r, &a) || !ownsBody(w, r, &a.Email) {
		return
	}
	if err := h.svc.SaveAppointment(r.Context(), &a); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Appointment saved successfully."})
}

func (h *BookingHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAppointments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, list)
}

func (h *BookingHandler) ListAppointmentsByEmail(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAppointmentsByEmail(r.Context(), ownerEmail(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, list)
}

func (h *BookingHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteAppointment(r.Context(), ownerEmail(r), appmiddleware.PathParam(r, "date"), appmiddleware.PathParam(r, "time"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Appointment deleted successfully."})
}

// ── Lab bookings ──────────────────────────────────────────────────────────

func (h *BookingHandler) SaveLabBooking(w http.ResponseWriter, r *http.Request) {
	var b domain.LabBooking
	if !decodeJSON(w, r, &b) || !ownsBody(w, r, &b.Email) {
		return
	}
	if err := h.svc.SaveLabBooking(r.Context(), &b); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Lab booking saved successfully."})
}

func (h *BookingHandler) ListLabBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListLabBookings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, list)
}

func (h *BookingHandler) ListLabBookingsByEmail(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListLabBookingsByEmail(r.Context(), ownerEmail(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, list)
}

func (h *BookingHandler) DeleteLabBooking(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteLabBooking(r.Context(), ownerEmail(r), appmiddleware.PathParam(r, "date"), appmiddleware.PathParam(r, "time"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Lab booking deleted successfully."})
}

// ── Medicine bookings ─────────────────────────────────────────────────────

func (h *BookingHandler) SaveMedicineBooking(w http.ResponseWriter, r *http.Request) {
	var b domain.MedicineBooking
	if !decodeJSON(w, r, &b) || !ownsBody(w, r, &b.Email) {
		return
	}
	if err := h.svc.SaveMedicineBooking(r.Context(), &b); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Medicine booked successfully."})
}

func (h *BookingHandler) ListMedicineBookingsByEmail(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListMedicineBookingsByEmail(r.Context(), ownerEmail(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, list)
}

func (h *BookingHandler) DeleteMedicineBooking(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteMedicineBooking(r.Context(), ownerEmail(r), appmiddleware.PathParam(r, "medicine"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Medicine booking deleted successfully."})
}

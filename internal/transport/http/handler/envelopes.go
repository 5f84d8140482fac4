package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-care-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SignupEnvelope wraps signup responses.
type SignupEnvelope struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginEnvelope wraps password-login responses.
type LoginEnvelope struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *ProfileView `json:"user"`
}

// GoogleEnvelope wraps federated login responses. GeneratedPassword is only
// present on the call that created the account.
type GoogleEnvelope struct {
	Message           string       `json:"message"`
	User              *ProfileView `json:"user"`
	GeneratedPassword string       `json:"generatedPassword,omitempty"`
}

// LogoutEnvelope tells the client to drop its token.
type LogoutEnvelope struct {
	Message string `json:"message"`
	Logout  bool   `json:"logout"`
}

// PhotoEnvelope wraps photo upload responses.
type PhotoEnvelope struct {
	Message string `json:"message"`
	Photo   string `json:"photo"`
}

// DoctorEnvelope wraps the doctor dashboard response.
type DoctorEnvelope struct {
	Doctor *ProfileView `json:"doctor"`
}

// ProfileView is the account as shown to its owner. It never carries the
// password hash or OTP state.
type ProfileView struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name,omitempty"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Photo          string     `json:"photo,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	DOB            string     `json:"dob,omitempty"`
	Age            int        `json:"age,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Specialization string     `json:"specialization,omitempty"`
	HospitalName   string     `json:"hospitalName,omitempty"`
	Experience     string     `json:"experience,omitempty"`
	Verified       bool       `json:"verified"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

func toProfile(a *domain.Account) *ProfileView {
	if a == nil {
		return nil
	}
	v := &ProfileView{
		ID:             a.ID,
		Name:           a.Name,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Role:           a.Role,
		Photo:          a.Photo,
		Gender:         a.Gender,
		DOB:            a.DOB,
		Age:            a.Age,
		Phone:          a.Phone,
		Specialization: a.Specialization,
		HospitalName:   a.HospitalName,
		Experience:     a.Experience,
		Verified:       a.Verified,
	}
	if !a.CreatedAt.IsZero() {
		created := a.CreatedAt
		v.CreatedAt = &created
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type errorMapping struct {
	target  error
	status  int
	message string
}

// errorTable maps domain sentinels to responses. An empty message means the
// wrapping context is shown instead.
var errorTable = []errorMapping{
	{domain.ErrBadRequest, http.StatusBadRequest, ""},
	{domain.ErrConflict, http.StatusBadRequest, "Email already exists."},
	{domain.ErrNotFound, http.StatusNotFound, "Not found."},
	{domain.ErrInvalidCode, http.StatusBadRequest, "Invalid OTP."},
	{domain.ErrExpired, http.StatusBadRequest, "OTP expired."},
	{domain.ErrUnverified, http.StatusForbidden, "Please verify your email first."},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials."},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized."},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden."},
	{domain.ErrDelivery, http.StatusInternalServerError, "Failed to send OTP. Please request a new code."},
}

// writeServiceError maps a service error to a status and message. Anything
// not recognised is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = strings.TrimSuffix(err.Error(), ": "+m.target.Error())
			}
			writeError(w, m.status, msg)
			return
		}
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

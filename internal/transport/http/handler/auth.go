package handler

import (
	"context"
	"net/http"

	"github.com/go-care-nosql/internal/application/auth"
	"github.com/go-care-nosql/internal/domain"
)

// AuthHandler serves signup, OTP verification, login and federated login for
// patients and doctors.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) PatientSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.PatientSignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RegisterPatient(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SignupEnvelope{Message: "Signup successful. OTP sent to email.", Email: req.Email})
}

func (h *AuthHandler) DoctorSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.DoctorSignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RegisterDoctor(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SignupEnvelope{Message: "Signup successful. OTP sent to email.", Email: req.Email})
}

func (h *AuthHandler) PatientVerify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.VerifyPatient(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified successfully."})
}

func (h *AuthHandler) DoctorVerify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.VerifyDoctor(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Doctor registered successfully."})
}

func (h *AuthHandler) PatientResend(w http.ResponseWriter, r *http.Request) {
	h.resend(w, r, h.svc.ResendPatientOTP)
}

func (h *AuthHandler) DoctorResend(w http.ResponseWriter, r *http.Request) {
	h.resend(w, r, h.svc.ResendDoctorOTP)
}

func (h *AuthHandler) resend(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, req domain.ResendOTPRequest) error) {
	var req domain.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := fn(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "New OTP sent to email."})
}

func (h *AuthHandler) PatientLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.svc.LoginPatient)
}

func (h *AuthHandler) DoctorLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.svc.LoginDoctor)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, req domain.LoginRequest) (*auth.LoginResult, error)) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := fn(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{Message: "Login successful", Token: res.Token, User: toProfile(res.Account)})
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.GoogleLogin(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Created {
		writeJSON(w, http.StatusOK, GoogleEnvelope{
			Message:           "User created successfully with Google.",
			User:              toProfile(res.Account),
			GeneratedPassword: res.GeneratedPassword,
		})
		return
	}
	writeJSON(w, http.StatusOK, GoogleEnvelope{Message: "Welcome back!", User: toProfile(res.Account)})
}

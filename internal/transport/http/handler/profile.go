package handler

import (
	"net/http"

	"github.com/go-care-nosql/internal/application/account"
	"github.com/go-care-nosql/internal/domain"
	appmiddleware "github.com/go-care-nosql/internal/transport/http/middleware"
)

// maxPhotoSize bounds the multipart body of a photo upload.
const maxPhotoSize = 5 << 20

// ProfileHandler serves the signed-in account's profile endpoints.
type ProfileHandler struct {
	svc account.Service
}

func NewProfileHandler(svc account.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

// Me returns the caller's own account, looked up in the collection matching
// the role in the token.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := appmiddleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	acc, err := h.svc.Profile(r.Context(), claims.Role, claims.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(acc))
}

func (h *ProfileHandler) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := appmiddleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}
	acc, err := h.svc.DoctorDashboard(r.Context(), claims.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DoctorEnvelope{Doctor: toProfile(acc)})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.UpdateProfile(r.Context(), ownerEmail(r), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LogoutEnvelope{Message: "Profile updated successfully. Please log in again.", Logout: true})
}

func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeError(w, http.StatusBadRequest, "photo must be a multipart upload of at most 5 MB")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	url, err := h.svc.UploadPhoto(r.Context(), ownerEmail(r), header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PhotoEnvelope{Message: "Photo uploaded successfully.", Photo: url})
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), ownerEmail(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LogoutEnvelope{Message: "Account and all associated data deleted.", Logout: true})
}

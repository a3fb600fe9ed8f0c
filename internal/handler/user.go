package handler

import (
	"net/http"

	"github.com/voltstore/storefront/internal/domain/user"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  userProfile `json:"user"`
}

type userProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, token, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toProfile(u)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: toProfile(u)})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type forgotPasswordResponse struct {
	Message string `json:"message"`

	// ResetToken is populated only when the debug exposure flag is on.
	ResetToken string `json:"resetToken,omitempty"`
}

// forgotPassword issues a password reset token. The response is identical
// whether or not the email exists, so accounts cannot be enumerated.
func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.users.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := forgotPasswordResponse{
		Message: "if the account exists, a reset link has been sent",
	}
	if h.cfg.ExposeResetTokens {
		resp.ResetToken = token
	}
	writeJSON(w, http.StatusOK, resp)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "newPassword is required")
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func toProfile(u *user.User) userProfile {
	return userProfile{ID: u.ID, Email: u.Email, Name: u.Name}
}

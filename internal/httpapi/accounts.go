package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	p, err := s.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.RegisterResponse{Data: p, Message: "Registration Successful."})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	pair, err := s.accounts.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{Token: pair, Message: "Login Successful."})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req types.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	pair, err := s.accounts.Refresh(r.Context(), req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleSendResetEmail(w http.ResponseWriter, r *http.Request) {
	var req types.ResetEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	if err := s.accounts.SendPasswordReset(r.Context(), req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Password reset mail sent successfully"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req types.PasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	uid, token := chi.URLParam(r, "uid"), chi.URLParam(r, "token")
	if err := s.accounts.ResetPassword(r.Context(), uid, token, req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Password reset successful."})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	p, err := s.accounts.Profile(r.Context(), u.ID)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req types.PasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w)
		return
	}
	u, _ := userFromContext(r.Context())
	if err := s.accounts.ChangePassword(r.Context(), u.ID, req); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Password updated successfully"})
}

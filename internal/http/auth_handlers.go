package httpapi

import (
	"net/http"

	"elearning-backend-go/internal/services"
	"elearning-backend-go/internal/session"
)

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest may carry the refresh token of the same sign-in so both die.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := services.Register(r.Context(), s.Store, s.Tokens, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tokenResponse(result))
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := services.Login(r.Context(), s.Store, s.Tokens, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse(result))
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := services.Refresh(r.Context(), s.Store, s.Tokens, req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse(result))
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if err := services.Logout(r.Context(), s.Store, s.Tokens, currentClaims(r), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}
	session.FromContext(r.Context()).Teardown()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, profileFromIdentity(CurrentIdentity(r)))
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := services.CaptureHealth(r.Context(), s.DB, s.Config.MediaStoragePath)
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, report)
}

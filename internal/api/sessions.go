package api

import (
	"errors"
	"net/http"

	"salonbook/internal/auth"
	"salonbook/internal/booking"
	"salonbook/internal/salonapi"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// handleCreateSession starts an anonymous customer session.
// POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(auth.RoleCustomer, 0)
	s.writeSession(w, http.StatusCreated, sess)
}

// handleLogin starts a stylist or admin session.
// POST /api/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	login, err := s.backend.LoginStylist(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, salonapi.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error().Err(err).Msg("stylist login")
		writeError(w, http.StatusBadGateway, "login failed")
		return
	}

	sess := s.sessions.Create(login.Role(), login.Stylist.ID)
	s.logger.Info().Str("session_id", sess.ID).Int64("stylist_id", login.Stylist.ID).Str("role", string(sess.Role)).Msg("staff login")
	s.writeSession(w, http.StatusOK, sess)
}

// handleLogout revokes the session behind the token.
// POST /api/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	s.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(sessionFromContext(r.Context())))
}

func (s *Server) writeSession(w http.ResponseWriter, status int, sess *booking.Session) {
	token, exp, err := s.issuer.Issue(sess.ID, sess.Role, sess.StylistID)
	if err != nil {
		s.sessions.Delete(sess.ID)
		s.logger.Error().Err(err).Msg("issue session token")
		writeError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	writeJSON(w, status, sessionResponse{
		Token:     token,
		SessionID: sess.ID,
		Role:      sess.Role,
		StylistID: sess.StylistID,
		ExpiresAt: exp,
	})
}

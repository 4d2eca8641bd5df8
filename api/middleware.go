package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// requireSeat guards turn actions when seat tokens are enabled. The token
// must name this session and the player who holds the turn.
func (s *Server) requireSeat(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.seats == nil {
			next(w, r)
			return
		}
		sessionID := mux.Vars(r)["id"]

		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := s.seats.Verify(token)
		if err != nil {
			s.logger.Debug("seat token rejected", "session", sessionID, "error", err)
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if !strings.EqualFold(claims.SessionID, sessionID) {
			respondError(w, http.StatusForbidden, "seat token belongs to another session")
			return
		}

		state, err := s.service.GetGameState(r.Context(), sessionID)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		if active := state.ActivePlayer(); active == nil || active.ID != claims.PlayerID {
			respondError(w, http.StatusForbidden, "it is not your turn")
			return
		}
		next(w, r)
	}
}

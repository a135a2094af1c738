package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/zapstore-app/zapstore/internal/models"
)

// healthHandler reports liveness (GET /health).
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("healthy", nil))
}

// sessionsHandler lists all conversation sessions (GET /sessions).
func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.sessionsHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.sessionsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessions, err := s.st.ListSessions()
	if err != nil {
		slog.Error("Server.sessionsHandler: failed to list sessions", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch sessions"))
		return
	}
	slog.Debug("Server.sessionsHandler: sessions fetched", "count", len(sessions))
	writeJSONResponse(w, http.StatusOK, models.Success(sessions))
}

// sessionDeleteHandler removes a session by remote id (DELETE /sessions/{remoteID}).
func (s *Server) sessionDeleteHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.sessionDeleteHandler: processing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", http.MethodDelete)
		slog.Warn("Server.sessionDeleteHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	remoteID := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if remoteID == "" || strings.Contains(remoteID, "/") {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing or invalid session id"))
		return
	}
	session, err := s.st.GetSession(remoteID)
	if err != nil {
		slog.Error("Server.sessionDeleteHandler: failed to look up session", "error", err, "remote_id", remoteID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to look up session"))
		return
	}
	if session == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}
	if err := s.st.DeleteSession(remoteID); err != nil {
		slog.Error("Server.sessionDeleteHandler: failed to delete session", "error", err, "remote_id", remoteID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete session"))
		return
	}
	slog.Info("Server.sessionDeleteHandler: session deleted", "remote_id", remoteID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session deleted", nil))
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/notehub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps service errors to statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	case errors.Is(err, services.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	user, token, err := s.users.SignIn(r.Context(), req.Token)
	if err != nil {
		s.logger.Info(r.Context(), "sign-in rejected", "error", err)
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "signed in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, sessionResponse{Identity: toIdentity(*user), SessionToken: token})
}

func (s *Server) whoAmI(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, toIdentity(*user))
}

func (s *Server) revokeSession(w http.ResponseWriter, r *http.Request) {
	if claims, ok := claimsFrom(r.Context()); ok {
		s.users.SignOut(claims)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	b, ok := ballotFor(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be up, down or remove")
		return
	}

	n, err := s.notes.Vote(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"), b)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Upvotes: n.Upvotes, Downvotes: n.Downvotes})
}

func (s *Server) uploadNote(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	view, err := s.notes.Upload(r.Context(), viewerID(r.Context()), req.note())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "note uploaded", "note_id", view.ID, "user_id", view.UploaderID)
	writeJSON(w, http.StatusCreated, toNote(*view))
}

func (s *Server) recentNotes(w http.ResponseWriter, r *http.Request) {
	num := 0
	if raw := r.URL.Query().Get("num"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "num must be a non-negative integer")
			return
		}
		num = v
	}

	views, err := s.notes.Recent(r.Context(), viewerID(r.Context()), num)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotes(views))
}

func (s *Server) searchNotes(w http.ResponseWriter, r *http.Request) {
	views, err := s.notes.Search(r.Context(), viewerID(r.Context()), r.URL.Query().Get("query"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotes(views))
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	view, err := s.notes.Get(r.Context(), viewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNote(*view))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/logging"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"loads":    s.limiter.Status(),
		"database": s.source != nil,
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]core.DatasetInfo, len(defs))
	for i, d := range defs {
		out[i] = d.Info
	}
	writeJSON(w, out)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sessions.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sessionFrom(r.Context()).Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var profiles []core.ColumnProfile
	_ = sessionFrom(r.Context()).Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		profiles = core.Profile(e.Table())
		return nil
	})
	writeJSON(w, profiles)
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	var dict []core.DictionaryEntry
	_ = sessionFrom(r.Context()).Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		dict = core.DataDictionary(e.Table())
		return nil
	})
	writeJSON(w, dict)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	_ = sessionFrom(r.Context()).Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		snap = core.TakeSnapshot(e.Table())
		return nil
	})
	writeJSON(w, snap)
}

// handleExport streams the session's current table as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	filename := fmt.Sprintf("%s_cleaned_%s.csv", sess.Dataset, time.Now().UTC().Format("20060102_150405"))

	err := sess.Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		t := e.Table()
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		return core.WriteCSV(w, t)
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("export interrupted", "error", err)
	}
}

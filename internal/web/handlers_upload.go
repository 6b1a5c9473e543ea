package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/logging"
	"github.com/JonMunkholm/crashaudit/internal/rules"
	"github.com/JonMunkholm/crashaudit/internal/session"
)

// loadResponse is returned when a table has been loaded into a new session.
type loadResponse struct {
	Session       session.Info        `json:"session"`
	ParseFailures []core.ParseFailure `json:"parseFailures"`
}

// handleUpload loads a multipart CSV upload into a new session.
//
// Form fields: file (required), dataset (defaults to AUDIT_DATASET) and
// rules (optional YAML overriding the dataset's audit rules).
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("file too large: %w", err), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	load := func(_ context.Context, specs []core.FieldSpec) (*core.LoadResult, error) {
		return core.ReadCSV(file, specs)
	}
	s.createSession(w, r, r.FormValue("dataset"), header.Filename, "csv", []byte(r.FormValue("rules")), load)
}

type queryRequest struct {
	Dataset string `json:"dataset"`
	Query   string `json:"query"`
	Rules   string `json:"rules"`
}

// handleQueryLoad loads the result of a SQL query into a new session.
func (s *Server) handleQueryLoad(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		s.respondError(w, r, fmt.Errorf("%w: query is required", errBadRequest), http.StatusBadRequest)
		return
	}

	load := func(ctx context.Context, specs []core.FieldSpec) (*core.LoadResult, error) {
		return s.source.Load(ctx, req.Query, specs)
	}
	s.createSession(w, r, req.Dataset, "query", "postgres", []byte(req.Rules), load)
}

type loadFunc func(ctx context.Context, specs []core.FieldSpec) (*core.LoadResult, error)

// createSession resolves the dataset and its rules, runs load under the
// load limiter and stores the table in a new session.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request, dataset, name, source string, override []byte, load loadFunc) {
	ctx := r.Context()
	if dataset == "" {
		dataset = s.cfg.Audit.Dataset
	}

	def, ok := core.Get(dataset)
	if !ok {
		s.respondError(w, r, fmt.Errorf("unknown dataset %q", dataset), http.StatusBadRequest)
		return
	}
	cfg, err := s.rulesFor(def, override)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), http.StatusBadRequest)
		return
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	res, err := load(ctx, def.FieldSpecs)
	s.limiter.Release()
	s.metrics.ObserveLoad(source, dataset, res, err)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	sess, err := s.sessions.Create(dataset, name, res.Table, cfg)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))

	logging.WithFields(ctx, "session_id", sess.ID, "dataset", dataset).Info("table loaded",
		"source", source,
		"rows", res.Table.RowCount(),
		"columns", res.Table.ColumnCount(),
		"parse_failures", len(res.ParseFailures),
	)

	failures := res.ParseFailures
	if failures == nil {
		failures = []core.ParseFailure{}
	}
	writeJSONStatus(w, http.StatusCreated, loadResponse{Session: sess.Info(), ParseFailures: failures})
}

// rulesFor layers the configured rules file (for the default dataset) and
// then the request's override on the dataset's registered rules.
func (s *Server) rulesFor(def core.DatasetDefinition, override []byte) (core.AuditConfig, error) {
	cfg := def.Rules
	if def.Info.Key == s.cfg.Audit.Dataset {
		var err error
		if cfg, err = rules.Load(s.cfg.Audit.RulesFile, cfg); err != nil {
			return cfg, err
		}
	}
	if len(override) == 0 {
		return cfg, nil
	}
	return rules.Parse(override, cfg)
}

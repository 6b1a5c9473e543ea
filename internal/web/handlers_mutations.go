package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/session"
)

// cleanResponse describes one applied cleaning step.
type cleanResponse struct {
	Message string                      `json:"message"`
	Entry   core.TransformationLogEntry `json:"entry"`
	Before  core.Snapshot               `json:"before"`
	After   core.Snapshot               `json:"after"`
	Session session.Info                `json:"session"`
}

type cleanOp func(e *core.CleaningEngine) (*core.Table, string, error)

// applyCleaning runs op on the session's engine and writes the result with
// before and after metrics. metric is the operation label for Prometheus.
func (s *Server) applyCleaning(w http.ResponseWriter, r *http.Request, metric string, op cleanOp) {
	sess := sessionFrom(r.Context())

	var resp cleanResponse
	err := sess.Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		resp.Before = core.TakeSnapshot(e.Table())
		next, msg, err := op(e)
		if err != nil {
			return err
		}
		history := e.History()
		resp.Message = msg
		resp.Entry = history[len(history)-1]
		resp.After = core.TakeSnapshot(next)
		return nil
	})
	s.metrics.ObserveCleaning(metric, err)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	resp.Session = sess.Info()
	writeJSON(w, resp)
}

type imputeRequest struct {
	Column   string `json:"column"`
	Strategy string `json:"strategy"`
}

func (s *Server) handleImpute(w http.ResponseWriter, r *http.Request) {
	var req imputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	strategy, err := core.ParseImputeStrategy(req.Strategy)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.applyCleaning(w, r, "impute", func(e *core.CleaningEngine) (*core.Table, string, error) {
		return e.Impute(req.Column, strategy)
	})
}

type columnsRequest struct {
	Columns []string `json:"columns"`
}

// handleDropDuplicates accepts an optional body naming the subset columns.
func (s *Server) handleDropDuplicates(w http.ResponseWriter, r *http.Request) {
	var req columnsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
	}
	s.applyCleaning(w, r, "drop_duplicates", func(e *core.CleaningEngine) (*core.Table, string, error) {
		return e.DropDuplicates(req.Columns...)
	})
}

type columnRequest struct {
	Column string `json:"column"`
}

func (s *Server) handleStandardize(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCleaning(w, r, "standardize_temporal", func(e *core.CleaningEngine) (*core.Table, string, error) {
		return e.StandardizeTemporal(req.Column)
	})
}

func (s *Server) handleDropMissing(w http.ResponseWriter, r *http.Request) {
	var req columnsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
	}
	s.applyCleaning(w, r, "drop_missing", func(e *core.CleaningEngine) (*core.Table, string, error) {
		return e.DropMissing(req.Columns...)
	})
}

type fillRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (s *Server) handleFillMissing(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyCleaning(w, r, "fill_missing", func(e *core.CleaningEngine) (*core.Table, string, error) {
		return e.FillMissing(req.Column, req.Value)
	})
}

type filterYearRequest struct {
	Column  string `json:"column"`
	MinYear int    `json:"minYear"`
}

func (s *Server) handleFilterYear(w http.ResponseWriter, r *http.Request) {
	var req filterYearRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.MinYear <= 0 {
		s.respondError(w, r, fmt.Errorf("%w: minYear must be positive", errBadRequest), http.StatusBadRequest)
		return
	}
	s.applyCleaning(w, r, "filter_min_year", func(e *core.CleaningEngine) (*core.Table, string, error) {
		return e.FilterMinYear(req.Column, req.MinYear)
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var history []core.TransformationLogEntry
	_ = sessionFrom(r.Context()).Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		history = e.History()
		return nil
	})
	if history == nil {
		history = []core.TransformationLogEntry{}
	}
	writeJSON(w, history)
}

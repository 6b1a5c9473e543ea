package web

import (
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/crashaudit/internal/core"
	"github.com/JonMunkholm/crashaudit/internal/logging"
	"github.com/JonMunkholm/crashaudit/internal/web/views"
)

// runAudit audits the session's current table and records the metrics.
func (s *Server) runAudit(r *http.Request) (*core.AuditReport, string) {
	sess := sessionFrom(r.Context())

	var report *core.AuditReport
	var insight string
	start := time.Now()
	_ = sess.Do(func(e *core.CleaningEngine, cfg core.AuditConfig) error {
		report = core.AuditAt(e.Table(), cfg, s.now())
		insight = core.SynthesizeInsight(e.Table(), cfg)
		return nil
	})
	elapsed := time.Since(start)
	s.metrics.ObserveAudit(sess.Dataset, report, elapsed)

	logging.WithFields(r.Context(), "session_id", sess.ID).Info("audit complete",
		"health_score", report.HealthScore,
		"rows", report.RowCount,
		"findings", len(report.Summary),
		"duration_ms", elapsed.Milliseconds(),
	)
	return report, insight
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, _ := s.runAudit(r)
	writeJSON(w, report)
}

type insightResponse struct {
	Insight     string             `json:"insight"`
	TopCategory core.CategoryCount `json:"topCategory"`
	PainPoint   core.PainPoint     `json:"painPoint"`
	Latest      string             `json:"latest"`
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	var resp insightResponse
	_ = sessionFrom(r.Context()).Do(func(e *core.CleaningEngine, cfg core.AuditConfig) error {
		t := e.Table()
		resp = insightResponse{
			Insight:     core.SynthesizeInsight(t, cfg),
			TopCategory: core.TopCategory(t, cfg.CategoryField),
			PainPoint:   core.MainPainPoint(t),
			Latest:      core.LatestValue(t, cfg.RecencyField),
		}
		return nil
	})
	writeJSON(w, resp)
}

// handleReportPage renders the HTML report of the session's current state.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	report, insight := s.runAudit(r)

	var history []core.TransformationLogEntry
	_ = sess.Do(func(e *core.CleaningEngine, _ core.AuditConfig) error {
		history = e.History()
		return nil
	})

	templ.Handler(views.Report(views.ReportData{
		SessionID: sess.ID,
		Dataset:   sess.Dataset,
		Report:    report,
		Insight:   insight,
		History:   history,
	})).ServeHTTP(w, r)
}

package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labops/go-sdk/pkg/alerts"
	"github.com/labops/go-sdk/pkg/dataset"
	"github.com/labops/go-sdk/pkg/dq"
	"github.com/labops/go-sdk/pkg/labmetrics"
	"github.com/labops/go-sdk/pkg/server/response"
	"github.com/labops/go-sdk/pkg/types"
)

// Multipart form field names
const (
	fieldDataset = "dataset"
	fieldRules   = "rules"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleValidate runs the rule catalog against an uploaded CSV. A rules
// document attached to the request replaces the server catalog for this run
// only.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.readDatasetUpload(w, r)
	if !ok {
		return
	}

	catalog := s.catalog
	if file, _, err := r.FormFile(fieldRules); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, "failed to read rules upload")
			return
		}
		rules, err := dq.ParseRules(data)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		catalog = dq.NewCatalog()
		catalog.AddRules(rules...)
	}

	engine := dq.NewEngine(catalog, s.logger)
	start := time.Now()
	violations, err := engine.Validate(ds)
	s.metrics.observeRun(start, violations, err)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, engine.GenerateReport())
}

// handleTemplates describes the available rule kinds and ships the sample
// lab rules document as a starting point.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	doc, err := dq.SampleLabRulesDocument()
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "failed to render sample rules")
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rule_types": dq.KnownKinds(),
		"sample":     dq.SampleLabRules(),
		"document":   string(doc),
	})
}

// handleLint parses a rule document from the request body without touching
// the server catalog.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	rules, err := dq.ParseRules(data)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules": len(rules),
		"names": names,
	})
}

// handleUploadDataset replaces the in-memory dataset the metrics endpoints
// compute over.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.readDatasetUpload(w, r)
	if !ok {
		return
	}

	s.SetDataset(ds)
	s.logger.Info("dataset loaded",
		types.LogField{Key: "rows", Value: ds.NumRows()},
		types.LogField{Key: "columns", Value: ds.NumColumns()},
	)
	response.WriteJSON(w, http.StatusOK, map[string]int{
		"rows":    ds.NumRows(),
		"columns": ds.NumColumns(),
	})
}

func (s *Server) handleTAT(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	if r.URL.Query().Get("by") == "assay" {
		response.WriteJSON(w, http.StatusOK, labmetrics.TurnaroundTimeByAssay(ds))
		return
	}
	response.WriteJSON(w, http.StatusOK, labmetrics.TurnaroundTime(ds, r.URL.Query().Get("assay")))
}

func (s *Server) handleThroughput(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	grain := labmetrics.GrainHour
	if r.URL.Query().Get("grain") == string(labmetrics.GrainDay) {
		grain = labmetrics.GrainDay
	}

	switch r.URL.Query().Get("by") {
	case "assay":
		response.WriteJSON(w, http.StatusOK, labmetrics.ThroughputByAssay(ds, grain))
	case "machine":
		response.WriteJSON(w, http.StatusOK, labmetrics.ThroughputByMachine(ds, grain))
	default:
		response.WriteJSON(w, http.StatusOK, labmetrics.Throughput(ds, grain))
	}
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	if top := r.URL.Query().Get("top"); top != "" {
		limit, err := strconv.Atoi(top)
		if err != nil || limit < 1 {
			response.WriteError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		response.WriteJSON(w, http.StatusOK, labmetrics.MostCommonErrors(ds, limit))
		return
	}
	response.WriteJSON(w, http.StatusOK, labmetrics.ErrorMetrics(ds))
}

func (s *Server) handleSLA(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	hours := s.slaHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.WriteError(w, http.StatusBadRequest, "hours must be a positive number")
			return
		}
		hours = parsed
	}

	switch r.URL.Query().Get("by") {
	case "assay":
		response.WriteJSON(w, http.StatusOK, labmetrics.SLABreachRateByAssay(ds, hours))
		return
	case "machine":
		response.WriteJSON(w, http.StatusOK, labmetrics.SLABreachRateByMachine(ds, hours))
		return
	}

	stats := labmetrics.SLAMetrics(ds, hours)
	if s.notifier != nil && r.URL.Query().Get("notify") == "true" {
		s.notifySLA(r, ds, stats, hours)
	}
	response.WriteJSON(w, http.StatusOK, stats)
}

// notifySLA posts a Teams card summarizing the SLA query result
func (s *Server) notifySLA(r *http.Request, ds *dataset.Dataset, stats labmetrics.SLAStats, hours float64) {
	byAssay := labmetrics.SLABreachRateByAssay(ds, hours)
	facts := make([]alerts.CardFact, 0, len(byAssay))
	for _, assay := range labmetrics.GroupNames(byAssay) {
		if byAssay[assay].Breaches == 0 {
			continue
		}
		facts = append(facts, alerts.CardFact{
			Name:  assay,
			Value: strconv.Itoa(byAssay[assay].Breaches) + " breaches",
		})
	}

	if err := s.notifier.SLABreachAlert(r.Context(), stats.BreachCount, facts, "current dataset"); err != nil {
		s.logger.Error("failed to send SLA alert", types.LogField{Key: "error", Value: err.Error()})
	}
}

// readDatasetUpload extracts and parses the dataset CSV from a multipart
// request, writing the error response itself on failure.
func (s *Server) readDatasetUpload(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	file, _, err := r.FormFile(fieldDataset)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "multipart field \"dataset\" is required")
		return nil, false
	}
	defer file.Close()

	ds, err := dataset.ReadCSV(file)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return ds, true
}

// requireDataset fetches the in-memory dataset, writing 404 when none has
// been uploaded yet.
func (s *Server) requireDataset(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds := s.Dataset()
	if ds == nil {
		response.WriteError(w, http.StatusNotFound, "no dataset loaded, POST /v1/datasets first")
		return nil, false
	}
	return ds, true
}

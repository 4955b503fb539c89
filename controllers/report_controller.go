package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/services"
)

// ReportController handles activity log and export requests
type ReportController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewReportController creates a new report controller
func NewReportController(services *services.Services, logger *zap.Logger) *ReportController {
	return &ReportController{
		services: services,
		logger:   logger,
	}
}

// Activity handles GET /api/reports/activity?limit=
func (c *ReportController) Activity(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, r, c.logger, models.ValidationErrors{}.Add("limit", "limit must be a positive integer"))
			return
		}
	}

	entries, err := c.services.Audit.Activity(r.Context(), user, limit)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Export handles GET /api/reports/export?status=&format=csv|xlsx
func (c *ReportController) Export(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	query := r.URL.Query()
	export, err := c.services.Reports.ExportExpenses(r.Context(), user, query.Get("status"), query.Get("format"))
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		c.logger.Warn("Failed to write export", zap.Error(err))
	}
}

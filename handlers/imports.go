package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/racedaylabs/raceday/models"
)

type importRequest struct {
	Date string `json:"date"`
}

// StartImport kicks off the race-import pipeline for a date and returns the
// job id immediately. The pipeline runs in the background; callers poll
// GetImportJob until status leaves processing.
func (h *Handler) StartImport(c echo.Context) error {
	var req importRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	jobID, err := h.importer.Start(c.Request().Context(), req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"jobId":   jobID,
	})
}

// GetImportJob returns one import job record by id, including its status,
// progress percent and stats summary.
func (h *Handler) GetImportJob(c echo.Context) error {
	id := c.Param("id")

	job := new(models.ImportJob)
	err := h.db.NewSelect().Model(job).Where("ij.id = ?", id).Scan(c.Request().Context())
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "job not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, job)
}

// ListImportJobs returns recent import jobs, newest first.
func (h *Handler) ListImportJobs(c echo.Context) error {
	var jobs []models.ImportJob
	err := h.db.NewSelect().Model(&jobs).
		OrderExpr("created_at DESC").
		Limit(50).
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, jobs)
}

package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/racedaylabs/raceday/models"
)

// HorseResults returns a horse's imported result history, most recent first.
func (h *Handler) HorseResults(c echo.Context) error {
	horseID := c.Param("id")

	var results []models.HorseResult
	err := h.db.NewSelect().Model(&results).
		Where("hr.horse_id = ?", horseID).
		OrderExpr("hr.date DESC").
		Scan(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, results)
}

type distanceAnalysisJSON struct {
	models.HorseDistanceAnalysis
	Distances []distanceDetailJSON `json:"distances"`
}

type distanceDetailJSON struct {
	models.HorseDistanceDetail
	Times []models.HorseDistanceTime `json:"times"`
}

// HorseDistanceAnalysis returns a horse's distance/time breakdown with its
// detail and time rows nested.
func (h *Handler) HorseDistanceAnalysis(c echo.Context) error {
	horseID := c.Param("id")
	ctx := c.Request().Context()

	analysis := new(models.HorseDistanceAnalysis)
	err := h.db.NewSelect().Model(analysis).
		Where("hda.horse_id = ?", horseID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "no analysis for horse")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var details []models.HorseDistanceDetail
	err = h.db.NewSelect().Model(&details).
		Where("hdd.analysis_id = ?", analysis.ID).
		OrderExpr("hdd.dist_f ASC").
		Scan(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := distanceAnalysisJSON{HorseDistanceAnalysis: *analysis}
	for _, d := range details {
		var times []models.HorseDistanceTime
		err = h.db.NewSelect().Model(&times).
			Where("hdt.detail_id = ?", d.ID).
			OrderExpr("hdt.date DESC").
			Scan(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		out.Distances = append(out.Distances, distanceDetailJSON{HorseDistanceDetail: d, Times: times})
	}

	return c.JSON(http.StatusOK, out)
}

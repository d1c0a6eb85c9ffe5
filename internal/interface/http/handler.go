package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qiwen/epichart/internal/domain/timeline"
	apperrors "github.com/qiwen/epichart/pkg/errors"
)

// Handler wires the HTTP transport to the chart domain.
type Handler struct {
	chartSvc timeline.Service
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chartSvc timeline.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chartSvc: chartSvc,
		logger:   logger.With("component", "http.handler"),
	}
}

// Chart serves the merged per-region timeline in the requested view.
func (h *Handler) Chart(c *gin.Context) {
	req := timeline.ChartRequest{
		RegionID:        c.Param("regionId"),
		View:            c.Query("view"),
		Refresh:         isTruthy(c.Query("refresh")),
		LatestWeekStart: c.Query("latestWeekStart"),
	}

	var ok bool
	if req.HistoryWindow, ok = intQuery(c, "historyWindow"); !ok {
		return
	}
	if req.ForecastWindow, ok = intQuery(c, "forecastWindow"); !ok {
		return
	}
	if req.Horizon, ok = intQuery(c, "horizon"); !ok {
		return
	}
	if raw := c.Query("latestCases"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "latestCases must be numeric", err))
			return
		}
		req.LatestCases = &parsed
	}

	resp, err := h.chartSvc.Chart(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, chartError(err, "chart_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Overview serves the compact chart together with the stored observations.
func (h *Handler) Overview(c *gin.Context) {
	resp, err := h.chartSvc.Overview(c.Request.Context(), c.Param("regionId"))
	if err != nil {
		abortWithError(c, chartError(err, "overview_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListObservations returns the collaborator-stored weekly counts for a region.
func (h *Handler) ListObservations(c *gin.Context) {
	records, err := h.chartSvc.Observations(c.Request.Context(), c.Param("regionId"))
	if err != nil {
		abortWithError(c, chartError(err, "observations_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

type submitObservationsRequest struct {
	Entries []timeline.ObservationEntry `json:"entries"`
}

// SubmitObservations forwards manual weekly corrections upstream.
func (h *Handler) SubmitObservations(c *gin.Context) {
	var req submitObservationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if err := h.chartSvc.SubmitObservations(c.Request.Context(), c.Param("regionId"), req.Entries); err != nil {
		abortWithError(c, chartError(err, "submit_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted", "count": len(req.Entries)})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func chartError(err error, code string) *HTTPError {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "upstream_error"):
		status = http.StatusBadGateway
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", name+" must be an integer", err))
		return 0, false
	}
	return parsed, true
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"RateScope/internal/domain/models"
	"RateScope/internal/domain/repository"
	"RateScope/internal/export"
	"RateScope/internal/rule"
	"RateScope/internal/usecase"
	phttp "RateScope/pkg/http"
	"RateScope/pkg/logger"
)

// ExplorerHandler serves the REST surface of the explorer: the raw
// dataset, stateless rule computation, default coefficients, source
// status and the three export formats.
type ExplorerHandler struct {
	dataset   *models.Dataset
	session   *usecase.Session
	scheduler *usecase.Scheduler
	status    repository.SourceStatus
	renderer  *export.Renderer
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewExplorerHandler(
	dataset *models.Dataset,
	session *usecase.Session,
	scheduler *usecase.Scheduler,
	status repository.SourceStatus,
	renderer *export.Renderer,
	metrics repository.Metrics,
	log *logger.Logger,
) *ExplorerHandler {
	return &ExplorerHandler{
		dataset:   dataset,
		session:   session,
		scheduler: scheduler,
		status:    status,
		renderer:  renderer,
		metrics:   metrics,
		log:       log.With("api"),
	}
}

func (h *ExplorerHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/data", h.Data)
	g.GET("/rule", h.Rule)
	g.GET("/default-params", h.DefaultParams)
	g.GET("/status", h.Status)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/export/:chart/:format", h.Export)
}

// Data returns every loaded time series.
func (h *ExplorerHandler) Data(c echo.Context) error {
	return phttp.SuccessResponse(c, h.dataset)
}

// RuleRequest carries the query parameters of a stateless rule
// computation. Bounds match what the session accepts.
type RuleRequest struct {
	Rho   *float64 `query:"rho" default:"0.80" validate:"required,gte=0,lte=0.99"`
	RStar *float64 `query:"rstar" default:"1.5" validate:"required,gte=-2,lte=5"`
	Alpha *float64 `query:"alpha" default:"1.5" validate:"required,gte=0,lte=3"`
	Beta  *float64 `query:"beta" default:"0.5" validate:"required,gte=0,lte=3"`
	From  string   `query:"date_from" default:"2000-01" validate:"datetime=2006-01"`
	To    string   `query:"date_to" default:"2026-12" validate:"datetime=2006-01"`
}

// RuleResponse is the stateless computation result over the requested
// window.
type RuleResponse struct {
	Periods     []string             `json:"dates"`
	ImpliedRate []*float64           `json:"implied_rate"`
	Stats       models.FitStatistics `json:"stats"`
}

// Rule computes the implied series for ad-hoc coefficients without
// touching the live session.
func (h *ExplorerHandler) Rule(c echo.Context) error {
	var req RuleRequest
	if errs := phttp.ReadAndValidateRequest(c, &req); errs != nil {
		return phttp.BadRequestResponse(c, errs)
	}

	params := models.RuleParameters{Rho: *req.Rho, RStar: *req.RStar, Alpha: *req.Alpha, Beta: *req.Beta}
	window := models.DateWindow{From: req.From, To: req.To}

	implied := rule.ComputeImplied(h.dataset, params)
	periods, series := rule.FilterWindow(h.dataset.Periods, window, h.dataset.ActualRate, implied)
	if len(periods) == 0 {
		return phttp.AppErrorResponse(c, phttp.BadRequestError("selected window contains no data"))
	}

	return phttp.SuccessResponse(c, RuleResponse{
		Periods:     periods,
		ImpliedRate: series[1],
		Stats:       rule.ComputeStats(series[0], series[1]),
	})
}

// DefaultParams returns the startup coefficients and window.
func (h *ExplorerHandler) DefaultParams(c echo.Context) error {
	params, window := h.session.Defaults()
	return phttp.SuccessResponse(c, map[string]interface{}{
		"params": params,
		"window": window,
	})
}

// Status reports data availability, the loaded range and per-source
// cache state.
func (h *ExplorerHandler) Status(c echo.Context) error {
	out := h.status.Status(c.Request().Context())
	from, to := h.dataset.Range()
	out["observations"] = h.dataset.Len()
	out["date_range"] = map[string]string{"from": from, "to": to}
	out["generated_at"] = h.dataset.GeneratedAt
	out["server_time"] = time.Now().UTC()
	out["data_available"] = h.dataset.Len() > 0
	return phttp.SuccessResponse(c, out)
}

// Snapshot returns the most recent debounced recompute result.
func (h *ExplorerHandler) Snapshot(c echo.Context) error {
	snap := h.scheduler.Latest()
	if snap == nil {
		return phttp.AppErrorResponse(c, phttp.UnavailableError("no computation has completed yet"))
	}
	return phttp.SuccessResponse(c, snap)
}

// Export produces one downloadable artifact for a chart: a PNG
// rendering or the tabular data as delimited text or a workbook. An
// unknown chart id is logged and answered with no content rather than
// treated as a failure.
func (h *ExplorerHandler) Export(c echo.Context) error {
	chartID := c.Param("chart")
	format := c.Param("format")
	stamp := time.Now().Format("2006-01-02")

	if format == "png" {
		_, window := currentView(h.scheduler, h.session)
		body, err := h.renderer.RenderPNG(chartID, window)
		if err != nil {
			if errors.Is(err, export.ErrUnknownChart) {
				return phttp.NoContentResponse(c)
			}
			h.log.Error("image export failed", logger.String("chart", chartID), logger.Error(err))
			return phttp.InternalServerErrorResponse(c)
		}
		return phttp.AttachmentResponse(c,
			fmt.Sprintf("%s_%s.png", chartID, stamp), "image/png", body)
	}

	snap := h.scheduler.Latest()
	if snap == nil {
		return phttp.AppErrorResponse(c, phttp.UnavailableError("no computation has completed yet"))
	}
	table, err := export.BuildTable(snap, chartID)
	if err != nil {
		if errors.Is(err, export.ErrUnknownChart) {
			h.log.Warn("export requested for unregistered chart", logger.String("chart", chartID))
			return phttp.NoContentResponse(c)
		}
		return phttp.InternalServerErrorResponse(c)
	}

	started := time.Now()
	switch format {
	case "csv":
		body, err := export.EncodeCSV(table)
		if err != nil {
			h.log.Error("text export failed", logger.String("chart", chartID), logger.Error(err))
			return phttp.InternalServerErrorResponse(c)
		}
		h.metrics.RecordExport(chartID, "csv", time.Since(started).Seconds())
		return phttp.AttachmentResponse(c,
			fmt.Sprintf("%s_%s.csv", chartID, stamp), "text/csv; charset=utf-8", body)
	case "xlsx":
		body, err := export.EncodeXLSX(table)
		if err != nil {
			// The delimited text export stays available as a fallback.
			h.log.Error("workbook export failed", logger.String("chart", chartID), logger.Error(err))
			return phttp.AppErrorResponse(c, phttp.UnavailableError(
				"workbook export is unavailable; the delimited text export remains available"))
		}
		h.metrics.RecordExport(chartID, "xlsx", time.Since(started).Seconds())
		return phttp.AttachmentResponse(c,
			fmt.Sprintf("%s_%s.xlsx", chartID, stamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", body)
	default:
		return phttp.AppErrorResponse(c, phttp.BadRequestErrorf("unsupported export format %q", format))
	}
}

// currentView prefers the last published snapshot's view state and
// falls back to the session when nothing has been computed yet.
func currentView(s *usecase.Scheduler, session *usecase.Session) (models.RuleParameters, models.DateWindow) {
	if snap := s.Latest(); snap != nil {
		return snap.Params, snap.Window
	}
	return session.Read()
}

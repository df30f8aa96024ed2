package api

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/service/marketdata"
	"AllocDesk/internal/usecase"
	xhttp "AllocDesk/pkg/http"
	applogger "AllocDesk/pkg/logger"
)

// DashboardHandler serves the JSON API behind the dashboard.
type DashboardHandler struct {
	log          *applogger.Logger
	planner      *usecase.Planner
	history      *usecase.History
	market       *marketdata.Service
	descriptions map[string]string
}

// NewDashboardHandler creates the API handler.
func NewDashboardHandler(
	log *applogger.Logger,
	planner *usecase.Planner,
	history *usecase.History,
	market *marketdata.Service,
	descriptions map[string]string,
) *DashboardHandler {
	return &DashboardHandler{
		log:          log,
		planner:      planner,
		history:      history,
		market:       market,
		descriptions: descriptions,
	}
}

// RegisterRoutes registers the API routes on the Echo instance.
func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/plan", h.Plan)
	g.GET("/alerts", h.Alerts)
	g.GET("/quotes", h.Quotes)
	g.GET("/macro", h.Macro)
	g.GET("/history", h.History)
	g.POST("/history", h.RecordHistory)
	e.GET("/healthz", h.Health)
}

func (h *DashboardHandler) planParams(c echo.Context) (usecase.PlanParams, interface{}) {
	req := new(models.PlanRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return usecase.PlanParams{}, errs
	}
	return usecase.PlanParams{
		Total:        decimal.NewFromInt(req.Total),
		RateOverride: decimal.NewFromFloat(req.Rate),
	}, nil
}

// Plan evaluates all rules and returns the full rebalance plan.
func (h *DashboardHandler) Plan(c echo.Context) error {
	params, errs := h.planParams(c)
	if errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	plan := h.planner.PlanRebalance(c.Request().Context(), params)
	return xhttp.SuccessResponse(c, plan)
}

// AlertsResponse is the alert-center payload: the advisory drawdown signal
// plus each rule's regime flag.
type AlertsResponse struct {
	Drawdown  models.DrawdownStatus `json:"drawdown"`
	VAACrisis bool                  `json:"vaa_crisis"`
	LAARegime string                `json:"laa_regime"`
	DMRegime  string                `json:"dm_regime"`
}

// Alerts returns the staging and regime signals without position sizing.
func (h *DashboardHandler) Alerts(c echo.Context) error {
	params, errs := h.planParams(c)
	if errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	plan := h.planner.PlanRebalance(c.Request().Context(), params)
	return xhttp.SuccessResponse(c, AlertsResponse{
		Drawdown:  plan.Drawdown,
		VAACrisis: plan.VAA.Crisis,
		LAARegime: plan.LAA.Regime,
		DMRegime:  plan.DM.Regime,
	})
}

// Quotes returns the latest price per configured instrument.
func (h *DashboardHandler) Quotes(c echo.Context) error {
	quotes := h.market.Quotes(c.Request().Context(), h.planner.Symbols(), h.descriptions)
	return xhttp.ListResponse(c, quotes, int64(len(quotes)))
}

// Macro returns the configured macro indicator and its recent observations.
func (h *DashboardHandler) Macro(c echo.Context) error {
	ind := h.market.Macro(c.Request().Context())
	return xhttp.SuccessResponse(c, ind)
}

// History lists recorded rebalances in insertion order. Optional query
// params: since (RFC3339 or unix seconds) and limit (most recent N).
func (h *DashboardHandler) History(c echo.Context) error {
	recs, err := h.history.List(c.Request().Context())
	if err != nil {
		h.log.Error("history list failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history unavailable").WithError(err))
	}

	if since, ok := xhttp.ParseTime(c.QueryParam("since")); ok {
		filtered := recs[:0]
		for _, r := range recs {
			if !r.Timestamp.Before(since) {
				filtered = append(filtered, r)
			}
		}
		recs = filtered
	}
	if limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(recs) {
		recs = recs[len(recs)-limit:]
	}

	return xhttp.ListResponse(c, recs, int64(len(recs)))
}

// RecordHistory evaluates the current plan and appends its snapshot.
func (h *DashboardHandler) RecordHistory(c echo.Context) error {
	req := new(models.HistoryAppendRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	plan := h.planner.PlanRebalance(c.Request().Context(), usecase.PlanParams{
		Total:        decimal.NewFromInt(req.Total),
		RateOverride: decimal.NewFromFloat(req.Rate),
	})
	rec, err := h.history.Record(c.Request().Context(), plan)
	if err != nil {
		h.log.Error("history record failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not record rebalance").WithError(err))
	}
	return xhttp.CreatedResponse(c, rec)
}

// Health reports the state of providers and the optional history mirror.
func (h *DashboardHandler) Health(c echo.Context) error {
	status := h.market.Health(c.Request().Context())
	if err := h.history.Health(c.Request().Context()); err != nil {
		status["history_mirror"] = err.Error()
	} else {
		status["history_mirror"] = "ok"
	}
	return xhttp.SuccessResponse(c, status)
}

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/service/marketdata"
	"AllocDesk/internal/usecase"
	xhttp "AllocDesk/pkg/http"
	applogger "AllocDesk/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// DashboardHandler renders the HTML dashboard page.
type DashboardHandler struct {
	log          *applogger.Logger
	planner      *usecase.Planner
	history      *usecase.History
	market       *marketdata.Service
	descriptions map[string]string
	tmpl         *template.Template
}

// NewDashboardHandler parses the embedded templates and creates the handler.
func NewDashboardHandler(
	log *applogger.Logger,
	planner *usecase.Planner,
	history *usecase.History,
	market *marketdata.Service,
	descriptions map[string]string,
) (*DashboardHandler, error) {
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(0) },
		"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
		"price": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &DashboardHandler{
		log:          log,
		planner:      planner,
		history:      history,
		market:       market,
		descriptions: descriptions,
		tmpl:         tmpl,
	}, nil
}

// RegisterRoutes registers the page route.
func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
}

type pageData struct {
	Plan    models.RebalancePlan
	Quotes  []models.Quote
	Macro   models.MacroIndicator
	History []models.RebalanceRecord
}

// Index evaluates the plan with default parameters and renders the page.
func (h *DashboardHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	data := pageData{
		Plan:   h.planner.PlanRebalance(ctx, usecase.PlanParams{}),
		Quotes: h.market.Quotes(ctx, h.planner.Symbols(), h.descriptions),
		Macro:  h.market.Macro(ctx),
	}
	recs, err := h.history.List(ctx)
	if err != nil {
		h.log.Warn("history list failed", applogger.Error(err))
	}
	data.History = recs

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.log.Error("render dashboard failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("render failed").WithError(err))
	}
	return c.HTML(http.StatusOK, buf.String())
}

package api

import (
	"net/http"

	"TechScreen/internal/domain/models"
	"TechScreen/internal/domain/repository"
	"TechScreen/internal/selection"
	"TechScreen/internal/usecase"
	xhttp "TechScreen/pkg/http"
	xlogger "TechScreen/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScreenerEchoHandler exposes the screening results over HTTP. Most reads
// serve the manager's retained state; POST /api/run triggers a fresh pass
// and /api/history reads back from the signal store when one is wired.
type ScreenerEchoHandler struct {
	logger  *xlogger.Logger
	manager *usecase.Manager
	history repository.SignalHistory
}

// NewScreenerEchoHandler builds the handler. history may be nil when no
// persistent store is configured.
func NewScreenerEchoHandler(logger *xlogger.Logger, manager *usecase.Manager, history repository.SignalHistory) *ScreenerEchoHandler {
	return &ScreenerEchoHandler{logger: logger, manager: manager, history: history}
}

func (h *ScreenerEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/signals/:class", h.ClassSignals)
	g.GET("/history/:class", h.History)
	g.GET("/summary", h.Summary)
	g.GET("/top", h.Top)
	g.GET("/validation", h.Validation)
	g.GET("/status", h.Status)
	g.POST("/run", h.Run)
}

func (h *ScreenerEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ClassSignals returns the full retained signal table for one asset class,
// WATCH entries included.
func (h *ScreenerEchoHandler) ClassSignals(c echo.Context) error {
	req := &models.ClassSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	orch, err := h.manager.Orchestrator(models.AssetClass(req.Class))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("asset class %q not screened", req.Class))
	}

	resp := models.ClassSignalsResponse{
		AssetClass:  orch.Class(),
		Status:      orch.Status(),
		Phase:       string(orch.Phase()),
		GeneratedAt: orch.Result().GeneratedAt,
		Signals:     selection.Rank(signalValues(orch.Signals())),
		Excluded:    orch.Excluded(),
	}
	if runErr := orch.Err(); runErr != nil {
		resp.Error = runErr.Error()
	}
	return xhttp.SuccessResponse(c, resp)
}

// History returns previously persisted signals for one asset class, newest
// first.
func (h *ScreenerEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("signal history is not configured"))
	}

	signals, err := h.history.RecentSignals(c.Request().Context(), models.AssetClass(req.Class), req.Limit)
	if err != nil {
		h.logger.Error("signal history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, signals)
}

func (h *ScreenerEchoHandler) Summary(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.manager.Summary())
}

func (h *ScreenerEchoHandler) Top(c echo.Context) error {
	req := &models.TopSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.manager.Top(req.N))
}

func (h *ScreenerEchoHandler) Validation(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.manager.Validate())
}

func (h *ScreenerEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.manager.Statuses())
}

// Run executes the full screening pass synchronously and returns the
// resulting statuses and summary.
func (h *ScreenerEchoHandler) Run(c echo.Context) error {
	h.manager.RunAll(c.Request().Context())
	for class, status := range h.manager.Statuses() {
		if status == models.StatusError {
			h.logger.Warn("screening run finished with class error",
				xlogger.String("asset_class", string(class)))
		}
	}
	return xhttp.SuccessResponse(c, models.RunResponse{
		Statuses: h.manager.Statuses(),
		Summary:  h.manager.Summary(),
	})
}

func signalValues(table map[string]models.Signal) []models.Signal {
	out := make([]models.Signal, 0, len(table))
	for _, s := range table {
		out = append(out, s)
	}
	return out
}

package api

import (
	"time"

	"DarkScan/internal/domain/models"
	domrepo "DarkScan/internal/domain/repository"
	"DarkScan/internal/domain/service"
	"DarkScan/internal/service/metrics"
	"DarkScan/internal/service/ratelimit"
	"DarkScan/internal/usecase"
	"DarkScan/pkg/cache"
	xhttp "DarkScan/pkg/http"
	applogger "DarkScan/pkg/logger"
	"DarkScan/pkg/queue"

	"github.com/labstack/echo/v4"
)

// BacktestHandler serves the scan, screen, rankings and run-submission API.
type BacktestHandler struct {
	logger   *applogger.Logger
	scanner  *usecase.Scanner
	screener service.Screener
	bars     domrepo.BarSource
	store    domrepo.ResultStore // nil when no result store is configured
	queue    queue.QueueService  // nil when runs cannot be enqueued
	cache    cache.Service       // nil disables response caching
	rl       *ratelimit.Limiter
	scanCfg  models.Configuration
	cacheTTL struct {
		scan     time.Duration
		rankings time.Duration
		screen   time.Duration
	}
}

func NewBacktestHandler(
	logger *applogger.Logger,
	scanner *usecase.Scanner,
	screener service.Screener,
	bars domrepo.BarSource,
	scanCfg models.Configuration,
) *BacktestHandler {
	metrics.Register()
	h := &BacktestHandler{
		logger:   logger,
		scanner:  scanner,
		screener: screener,
		bars:     bars,
		rl:       ratelimit.New(),
		scanCfg:  scanCfg,
	}
	h.cacheTTL.scan = 60 * time.Second
	h.cacheTTL.rankings = 30 * time.Second
	h.cacheTTL.screen = 5 * time.Minute
	return h
}

// SetStore wires the result store used by the rankings endpoint.
func (h *BacktestHandler) SetStore(s domrepo.ResultStore) { h.store = s }

// SetQueue wires the run queue used by the backtest endpoint.
func (h *BacktestHandler) SetQueue(q queue.QueueService) { h.queue = q }

// SetCache enables response caching.
func (h *BacktestHandler) SetCache(c cache.Service) { h.cache = c }

// SetCacheTTL overrides the per-endpoint cache TTLs. Zero keeps the default.
func (h *BacktestHandler) SetCacheTTL(scan, rankings, screen time.Duration) {
	if scan > 0 {
		h.cacheTTL.scan = scan
	}
	if rankings > 0 {
		h.cacheTTL.rankings = rankings
	}
	if screen > 0 {
		h.cacheTTL.screen = screen
	}
}

func (h *BacktestHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.POST("/scan", h.Scan)
	g.GET("/screen", h.Screen)
	g.GET("/rankings", h.Rankings)
	g.POST("/backtest", h.EnqueueBacktest)
}

func (h *BacktestHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

type scanResponse struct {
	Signals []models.LiveSignal    `json:"signals"`
	Dropped []models.DroppedSymbol `json:"dropped,omitempty"`
}

func (h *BacktestHandler) Scan(c echo.Context) error {
	start := time.Now()
	endpoint := "scan"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":scan", 5, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cfg := h.scanCfg
	cfg.Family = models.RuleFamily(req.Family)
	cfg.AnalysisDays = req.AnalysisDays

	cacheKey := cache.GenerateKeyWithParams("scan", req.Family, req.AnalysisDays, len(req.Symbols))
	if len(req.Symbols) == 0 && h.fromCache(c, cacheKey, &scanResponse{}) {
		return nil
	}

	signals, dropped, err := h.scanner.Scan(c.Request().Context(), *req, cfg)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("scan usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	res := &scanResponse{Signals: signals, Dropped: dropped}
	if len(req.Symbols) == 0 {
		h.toCache(c, cacheKey, res, h.cacheTTL.scan)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *BacktestHandler) Screen(c echo.Context) error {
	start := time.Now()
	endpoint := "screen"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if !h.rl.Allow(c.RealIP()+":screen", 3, 0.5) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	req := &models.ScreenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := cache.GenerateKeyWithParams("screen", req.MinRatio, req.MinDollarVolume, req.MinPrice, req.Limit)
	var cached []models.ScreenResult
	if h.fromCache(c, cacheKey, &cached) {
		return nil
	}

	ctx := c.Request().Context()
	symbols, err := h.bars.Symbols(ctx)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("screen list symbols error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	series, _, err := h.bars.LoadAll(ctx, symbols)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("screen load error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	hits, err := h.screener.Screen(ctx, series, *req)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("screen usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	h.toCache(c, cacheKey, hits, h.cacheTTL.screen)
	return xhttp.SuccessResponse(c, hits)
}

func (h *BacktestHandler) Rankings(c echo.Context) error {
	start := time.Now()
	endpoint := "rankings"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_NO_STORE", "", "no result store configured", 501))
	}

	req := &models.RankingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.RunID == "" {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_REQUIRED", Field: "run_id", Message: "run_id is required",
		}})
	}

	cacheKey := cache.GenerateKeyWithParams("rankings", req.RunID, req.GroupBy, req.MinTrades, req.Limit)
	var cached []*models.ConfigResult
	if h.fromCache(c, cacheKey, &cached) {
		return nil
	}

	results, err := h.store.QueryResults(c.Request().Context(), req.RunID, domrepo.NormalizeGroupBy(req.GroupBy), req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("rankings query error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if req.MinTrades > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.TradeCount >= req.MinTrades {
				kept = append(kept, r)
			}
		}
		results = kept
	}
	h.toCache(c, cacheKey, results, h.cacheTTL.rankings)
	return xhttp.SuccessResponse(c, results)
}

func (h *BacktestHandler) EnqueueBacktest(c echo.Context) error {
	start := time.Now()
	endpoint := "backtest"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	if h.queue == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_NO_QUEUE", "", "no run queue configured", 501))
	}
	if !h.rl.Allow(c.RealIP()+":backtest", 2, 0.2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	payload := usecase.BacktestJobPayload{
		Family:       req.Family,
		Symbols:      req.Symbols,
		AnalysisDays: req.AnalysisDays,
		HoldingDays:  req.HoldingDays,
		Thresholds:   req.Thresholds,
	}
	if err := h.queue.PublishMessage(c.Request().Context(), usecase.BacktestJobType, payload); err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("backtest enqueue error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, map[string]string{"status": "enqueued"})
}

// fromCache writes the cached response and reports a hit. dest only carries
// the type for decoding.
func (h *BacktestHandler) fromCache(c echo.Context, key string, dest interface{}) bool {
	if h.cache == nil {
		return false
	}
	if err := h.cache.Get(c.Request().Context(), key, dest); err != nil {
		return false
	}
	return xhttp.SuccessResponse(c, dest) == nil
}

func (h *BacktestHandler) toCache(c echo.Context, key string, value interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(c.Request().Context(), key, value, ttl); err != nil {
		h.logger.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

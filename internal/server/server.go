package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adhikar-ai/adhikar/config"
	"github.com/adhikar-ai/adhikar/internal/agent"
	"github.com/adhikar-ai/adhikar/internal/telemetry"
	"github.com/adhikar-ai/adhikar/provider"
	"github.com/adhikar-ai/adhikar/session"
	"github.com/adhikar-ai/adhikar/tools/web_fetch"
	"github.com/adhikar-ai/adhikar/tools/web_search"
)

// Run wires the full pipeline and serves HTTP until the listener fails.
func Run(ctx context.Context, cfg *config.Config) error {
	tele := telemetry.New()

	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}
	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
	if err != nil {
		return fmt.Errorf("web searcher: %w", err)
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Fetcher), cfg.Fetch.Timeout, cfg.Fetch.MaxChars)
	if err != nil {
		return fmt.Errorf("web fetcher: %w", err)
	}
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	corpus := agent.NewCorpus()
	aggregator := agent.NewSearcher(searcher, fetcher, corpus, *cfg, tele, nil)
	analyzer := agent.NewAnalyzer(llm, cfg.Search.PriorityDomains, tele, nil)
	summarizer := agent.NewSummarizer(llm, tele, nil)
	drafter := agent.NewDrafter(llm, tele, nil)
	orch := agent.NewOrchestrator(analyzer, aggregator, summarizer, drafter, store, tele, nil)

	sweeper, err := session.NewSweeper(cfg.Session.SweepSchedule, cfg.Session.MaxAge, nil, store, corpus)
	if err != nil {
		return fmt.Errorf("session sweeper: %w", err)
	}
	sweepCtx, cancelSweep := context.WithCancel(ctx)
	defer cancelSweep()
	sweeper.Start(sweepCtx)

	e := New(cfg, orch, store, tele)
	return e.Start(cfg.Server.Address)
}

// New builds the echo instance with all routes registered.
func New(cfg *config.Config, orch *agent.Orchestrator, store session.Store, tele *telemetry.Telemetry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Server.AllowedOrigins},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(tele.Registry(), promhttp.HandlerOpts{})))
	}

	ch := &ChatHandler{Orch: orch, Store: store, MaxMessageLen: cfg.Server.MaxMessageLen}
	ch.Register(e)
	return e
}

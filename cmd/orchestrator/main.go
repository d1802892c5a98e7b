package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GlintPay/agentstack/agent"
	"github.com/GlintPay/agentstack/api"
	"github.com/GlintPay/agentstack/config"
	"github.com/GlintPay/agentstack/health"
	"github.com/GlintPay/agentstack/logging"
	gotel "github.com/GlintPay/agentstack/otel"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/heptiolabs/healthcheck"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "agent-orchestrator"
	shutdownTimeout = 30 * time.Second
	readinessBudget = 2 * time.Second
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatal().Msgf("Configuration loading failed: %+v", err)
	}

	// httplog reconfigures the zerolog globals, so it goes before our own setup
	requestLogger := httplog.NewLogger(serviceName, httplog.Options{
		JSON:    cfg.LogFormat != logging.FormatPlain,
		Concise: true,
	})

	if err = logging.SetupWithFormat(os.Stdout, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("Logging setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traceShutdown, e := gotel.Setup(ctx, serviceName, cfg.Tracing())
	if e != nil {
		log.Fatal().Stack().Err(e).Msg("Trace setup failed")
	}
	defer traceShutdown()

	clientset, err := agent.NewClientset(cfg.KubeConfig)
	if err != nil {
		log.Fatal().Stack().Err(err).Msg("Failed to initialize Kubernetes client")
	}

	manager := agent.NewManager(clientset, cfg)
	if err = manager.ValidateConfig(ctx); err != nil {
		log.Fatal().Stack().Err(err).Msg("Agent manager validation failed")
	}

	if cfg.ReaperPeriod > 0 {
		stopReaper, err := manager.StartReaper(cfg.ReaperPeriod)
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("Reaper setup failed")
		}
		defer stopReaper()
	}

	router := setupRouter(cfg, manager, requestLogger)
	setupHealthCheck(router, manager)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	////////////////////////////////////////////

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msgf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		log.Fatal().Stack().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Server exited")
}

func setupRouter(cfg config.ServerConfig, submitter api.TaskSubmitter, requestLogger zerolog.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(httplog.RequestLogger(requestLogger))

	routing := api.Routing{
		ServerName:   serviceName,
		ParentRouter: router,

		Submitter:   submitter,
		Metrics:     api.NewMetrics(prometheus.DefaultRegisterer, "agent_orchestrator"),
		EnableTrace: cfg.Tracing().Enabled,
	}

	router.Route("/", func(r chi.Router) {
		if e := routing.SetupFunctionalRoutes(r); e != nil {
			log.Fatal().Stack().Err(e).Msg("route setup failed")
		}
	})

	if len(cfg.MetricsPath) > 0 {
		log.Info().Msgf("Registering metrics endpoint at: %s", cfg.MetricsPath)
		router.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	return router
}

func setupHealthCheck(router *chi.Mux, manager *agent.Manager) {
	healthChk := health.New(
		health.WithChiMux(router),
		health.WithReadinessCheck("agents-namespace", healthcheck.Timeout(func() error {
			return manager.ValidateConfig(context.Background())
		}, readinessBudget)),
	)
	healthChk.StartListening()
}

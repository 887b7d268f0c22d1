package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/guardline/report-verifier/internal/api"
	"github.com/guardline/report-verifier/internal/classifier"
	"github.com/guardline/report-verifier/internal/config"
	"github.com/guardline/report-verifier/internal/credibility"
	"github.com/guardline/report-verifier/internal/database"
	"github.com/guardline/report-verifier/internal/escalation"
	"github.com/guardline/report-verifier/internal/llmclient"
	"github.com/guardline/report-verifier/internal/logger"
	"github.com/guardline/report-verifier/internal/mlclient"
	"github.com/guardline/report-verifier/internal/processor"
	"github.com/guardline/report-verifier/internal/retry"
	"github.com/guardline/report-verifier/internal/riskclient"
	"github.com/guardline/report-verifier/internal/storage"
	"github.com/guardline/report-verifier/internal/suspicion"
	"github.com/guardline/report-verifier/internal/telemetry"
	"github.com/guardline/report-verifier/internal/verification"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting report verifier",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Error("database connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Error("migration failed", logger.Error(err))
		os.Exit(1)
	}

	credibilityRepo := database.NewCredibilityRepository(db)
	reportRepo := database.NewReportRepository(db)

	// Verdict cache is optional; the service runs without Redis.
	var cache verification.VerdictCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = storage.NewClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.Database)
		if err != nil {
			log.Warn("redis unavailable, verdict cache disabled", logger.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			cache = storage.NewVerdictCache(redisClient, cfg.Redis.CacheTTL)
			log.Info("verdict cache enabled", logger.String("redis", cfg.Redis.URL))
		}
	}

	var ml verification.MLPredictor
	if cfg.ML.Enabled {
		ml = mlclient.NewClient(cfg.ML.ServiceURL)
		log.Info("fake-report model tier enabled", logger.String("url", cfg.ML.ServiceURL))
	}

	var llm verification.LLMAnalyzer
	if cfg.LLM.APIKey != "" {
		llm = llmclient.New(llmclient.Config{
			APIKey:            cfg.LLM.APIKey,
			Model:             cfg.LLM.Model,
			MaxTokens:         cfg.LLM.MaxTokens,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
			Burst:             cfg.LLM.Burst,
			Retry: retry.Config{
				MaxRetries:   cfg.LLM.MaxRetries,
				InitialDelay: cfg.LLM.RetryDelay,
			},
		}, log)
		log.Info("language model tier enabled", logger.String("model", cfg.LLM.Model))
	}

	var riskOracle escalation.RiskPredictor
	if cfg.Risk.Enabled {
		riskOracle = riskclient.NewClient(cfg.Risk.ServiceURL)
		log.Info("risk oracle enabled", logger.String("url", cfg.Risk.ServiceURL))
	}

	provider := telemetry.NewProvider()
	cls := classifier.New(log)
	ledger := credibility.NewLedger(credibilityRepo, log)
	cascade := verification.NewCascade(ml, llm, suspicion.NewScorer(log), log)
	verifier := verification.NewService(cascade, ledger, cls, reportRepo, cache, provider.Metrics, log)
	escalator := escalation.NewService(riskOracle, escalation.NewEngine(log), provider.Metrics, log)
	batch := processor.NewBatchProcessor(verifier, cfg.Service.Concurrency, provider.Metrics, log)

	handler := api.NewHandler(verifier, escalator, cls, ledger, reportRepo, batch, log)

	health := api.HealthOptions{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Checks: map[string]api.HealthChecker{
			"database": db.Ping,
		},
	}
	if redisClient != nil {
		health.Checks["redis"] = func() error {
			return redisClient.Ping(context.Background()).Err()
		}
	}

	server := api.NewServer(api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, log, func(router *gin.Engine) {
		api.SetupRoutes(router, handler, health, provider.Handler())
	})

	serverErrors := server.StartAsync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error("server failed", logger.Error(err))
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error("graceful shutdown failed", logger.Error(err))
			os.Exit(1)
		}
	}

	log.Info("report verifier stopped")
}

// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lender-match-workers/internal/common/camunda"
	"lender-match-workers/internal/common/config"
	"lender-match-workers/internal/common/database"
	"lender-match-workers/internal/common/logger"
	"lender-match-workers/internal/common/observability"
	"lender-match-workers/internal/extraction"
	"lender-match-workers/internal/extraction/ai"

	ec "lender-match-workers/internal/workers/ingestion/extract-criteria"
	ml "lender-match-workers/internal/workers/underwriting/match-lenders"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Camunda client initialization")

	if err != nil {
		zapLog.Fatal("camunda client failed after retries", zap.Error(err))
	}
	zapLog.Info("Camunda client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Extraction Pipeline ---
	parser := buildParser(ctx, cfg, redis, log, zapLog)

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, ml.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ml.TaskType)
		handler := ml.NewHandler(
			&ml.Config{
				Timeout:        time.Duration(wcfg.Timeout) * time.Millisecond,
				CacheTTL:       5 * time.Minute,
				MaxConcurrency: 8,
				AuditIndex:     "match-results",
			},
			pg.DB, redis.Client, esClient, log,
		)
		w := camunda.NewWorker(
			camundaClient.GetClient(), ml.TaskType, wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond, handler, zapLog,
		)
		w.Start()
		workers = append(workers, w)
	}

	if config.IsWorkerEnabled(cfg, ec.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ec.TaskType)
		handler := ec.NewHandler(
			&ec.Config{
				Timeout: time.Duration(wcfg.Timeout) * time.Millisecond,
				UseAI:   cfg.AI.Enabled,
			},
			parser, log,
		)
		w := camunda.NewWorker(
			camundaClient.GetClient(), ec.TaskType, wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond, handler, zapLog,
		)
		w.Start()
		workers = append(workers, w)
	}

	zapLog.Info("All workers registered successfully", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Camunda client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildParser assembles the extraction parser. Missing API keys simply drop
// the corresponding provider; with no providers at all the parser runs the
// deterministic strategies only.
func buildParser(ctx context.Context, cfg *config.Config, redis *database.RedisClient, log logger.Logger, zapLog *zap.Logger) *extraction.Parser {
	var providers []ai.Provider

	if cfg.AI.Enabled && cfg.AI.Gemini.APIKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
		if err != nil {
			zapLog.Warn("gemini provider init failed", zap.Error(err))
		} else {
			providers = append(providers, gemini)
		}
	}

	if cfg.AI.Enabled && cfg.AI.Claude.APIKey != "" {
		claude, err := ai.NewClaudeProvider(cfg.AI.Claude.APIKey, cfg.AI.Claude.Model)
		if err != nil {
			zapLog.Warn("claude provider init failed", zap.Error(err))
		} else {
			providers = append(providers, claude)
		}
	}

	if len(providers) == 0 {
		zapLog.Info("no model providers configured, extraction is deterministic only")
		return extraction.NewParser(nil, log)
	}

	cache := ai.NewRedisCache(redis.Client, time.Duration(cfg.AI.CacheTTL)*time.Second)
	extractor := ai.NewExtractor(providers, cache, log, time.Duration(cfg.AI.RequestTimeout)*time.Millisecond)
	return extraction.NewParser(extractor, log)
}

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

	"scholarship-workers/internal/common/aws"
	"scholarship-workers/internal/common/camunda"
	"scholarship-workers/internal/common/config"
	"scholarship-workers/internal/common/database"
	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/observability"
	"scholarship-workers/pkg/registry"

	// Data Access Workers (2)
	qs "scholarship-workers/internal/workers/data-access/query-scholarships"
	ss "scholarship-workers/internal/workers/data-access/search-scholarships"

	// Matching Workers (3)
	ee "scholarship-workers/internal/workers/matching/evaluate-eligibility"
	np "scholarship-workers/internal/workers/matching/normalize-profile"
	rs "scholarship-workers/internal/workers/matching/rank-scholarships"

	// Notification Workers (1)
	nm "scholarship-workers/internal/workers/notification/notify-match-results"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

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

	// --- Init AWS Clients (only when notification channels are enabled) ---
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		zapLog.Info("SES client initialized")
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		zapLog.Info("SNS client initialized")
	}

	// The activity registry documents every deployable task. A worker enabled
	// in config but absent from the registry is usually a typo in one of the two.
	activities, err := registry.LoadRegistry(cfg.Template.RegistryPath)
	if err != nil {
		zapLog.Warn("activity registry unavailable, skipping registration checks",
			zap.String("path", cfg.Template.RegistryPath),
			zap.Error(err),
		)
		activities = nil
	}

	manager := camunda.NewWorkerManager(zeebeClient.GetClient(), obs, zapLog)

	// --- START: Register ALL 6 Workers ---

	// --- 1. Data Access Workers (2) ---
	if cfg.Workers[qs.TaskType].Enabled {
		handler := qs.NewHandler(
			&qs.Config{
				Timeout: time.Duration(cfg.Workers[qs.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(manager, activities, qs.TaskType, cfg.Workers[qs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ss.TaskType].Enabled {
		handler := ss.NewHandler(
			&ss.Config{
				Timeout:      time.Duration(cfg.Workers[ss.TaskType].Timeout) * time.Millisecond,
				DefaultIndex: cfg.Database.Elasticsearch.Index,
			},
			esClient.Client, log,
		)
		startWorker(manager, activities, ss.TaskType, cfg.Workers[ss.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Matching Workers (3) ---
	if cfg.Workers[np.TaskType].Enabled {
		handler := np.NewHandler(
			&np.Config{
				Timeout: time.Duration(cfg.Workers[np.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(manager, activities, np.TaskType, cfg.Workers[np.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ee.TaskType].Enabled {
		handler := ee.NewHandler(
			&ee.Config{
				Timeout:  time.Duration(cfg.Workers[ee.TaskType].Timeout) * time.Millisecond,
				CacheTTL: time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(manager, activities, ee.TaskType, cfg.Workers[ee.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rs.TaskType].Enabled {
		handler := rs.NewHandler(
			&rs.Config{
				Timeout:         time.Duration(cfg.Workers[rs.TaskType].Timeout) * time.Millisecond,
				CatalogCacheTTL: time.Duration(cfg.Matching.CatalogCacheTTL) * time.Second,
				ProfileCacheTTL: time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second,
				MaxScholarships: cfg.Matching.MaxScholarships,
			},
			pg.DB, redis.Client, obs, log,
		)
		startWorker(manager, activities, rs.TaskType, cfg.Workers[rs.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Notification Workers (1) ---
	if cfg.Workers[nm.TaskType].Enabled {
		nmCfg := nm.LoadConfig()
		nmCfg.Timeout = time.Duration(cfg.Workers[nm.TaskType].Timeout) * time.Millisecond
		if cfg.Notifications.Email.FromEmail != "" {
			nmCfg.DefaultFromEmail = cfg.Notifications.Email.FromEmail
		}
		if cfg.Notifications.SMS.SenderID != "" {
			nmCfg.SMSSenderID = cfg.Notifications.SMS.SenderID
		}
		if cfg.Notifications.TopMatches > 0 {
			nmCfg.TopMatches = cfg.Notifications.TopMatches
		}
		if cfg.Notifications.TemplatesPath != "" {
			tpls, err := nm.LoadTemplates(cfg.Notifications.TemplatesPath)
			if err != nil {
				zapLog.Fatal("notification templates load failed",
					zap.String("path", cfg.Notifications.TemplatesPath),
					zap.Error(err),
				)
			}
			nmCfg.Templates = tpls
		}

		var email nm.EmailSender
		var sms nm.SMSSender
		if cfg.Notifications.Email.Enabled && sesClient != nil {
			email = sesClient
		}
		if cfg.Notifications.SMS.Enabled && snsClient != nil {
			sms = snsClient
		}

		handler := nm.NewHandler(nmCfg, pg.DB, email, sms, log)
		startWorker(manager, activities, nm.TaskType, cfg.Workers[nm.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

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
	manager.Close()

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(manager *camunda.WorkerManager, activities *registry.ActivityRegistry, taskType string, wcfg config.WorkerConfig, handler camunda.HandlerFunc, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	if activities != nil {
		if _, err := activities.FindByTaskType(taskType); err != nil {
			log.Warn("worker not listed in activity registry", zap.String("taskType", taskType), zap.Error(err))
		}
	}

	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}
	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	manager.Start(taskType, handler, maxJobs, timeout)
}

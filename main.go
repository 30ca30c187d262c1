package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/generative-ai-go/genai"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/api/option"

	"paperbase/features/search"
	"paperbase/features/syncrun"
	"paperbase/features/synonym"
	"paperbase/internal/adapter/drive"
	"paperbase/internal/adapter/gemini"
	"paperbase/internal/adapter/ocr"
	wstore "paperbase/internal/adapter/weaviate"
	"paperbase/internal/config"
	"paperbase/internal/expand"
	"paperbase/internal/extract"
	"paperbase/internal/ingest"
	"paperbase/internal/logger"
	"paperbase/internal/middleware"
	"paperbase/internal/retrieval"
	"paperbase/internal/retry"
	"paperbase/internal/vector"
)

func main() {
	// Initialize structured logger
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Database Connection
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("failed to open db connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Retry connection
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", cfg.BootstrapRetryAttempts)
		time.Sleep(time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second)
	}

	if err := db.Ping(); err != nil {
		slog.Error("failed to ping db after retries", "error", err)
		os.Exit(1)
	}

	// 3. Run Migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		slog.Error("failed to create migration driver", "error", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		slog.Error("failed to create migration instance", "error", err)
		os.Exit(1)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied successfully")

	// 4. Weaviate Connection & Schema
	wClient, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	})
	if err != nil {
		slog.Error("failed to create weaviate client", "error", err)
		os.Exit(1)
	}

	wAdapter := vector.NewWeaviateClientAdapter(wClient)

	// Retry Weaviate Schema Ensure
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := vector.EnsureSchema(context.Background(), wAdapter); err == nil {
			slog.Info("weaviate schema ensured")
			break
		}
		slog.Warn("failed to ensure weaviate schema, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second)
	}

	if err := vector.EnsureSchema(context.Background(), wAdapter); err != nil {
		slog.Error("failed to ensure weaviate schema after retries", "error", err)
		os.Exit(1)
	}

	// 5. Initialize Adapters
	vecStore := wstore.NewStore(wClient, cfg.NetworkTimeout)

	genaiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		slog.Error("failed to create genai client", "error", err)
		os.Exit(1)
	}
	defer genaiClient.Close()

	embedder := gemini.NewEmbedder(genaiClient, cfg.EmbedModel, cfg.EmbedDimension, cfg.NetworkTimeout)
	rewriter := gemini.NewRewriter(genaiClient, cfg.RewriteModel, cfg.NetworkTimeout)

	driveClient, err := drive.NewClient(context.Background(), cfg.DriveCredentials, cfg.DriveFolderID, cfg.NetworkTimeout)
	if err != nil {
		slog.Error("failed to create drive client", "error", err)
		os.Exit(1)
	}

	var ocrEngine extract.OCR
	if cfg.OCREnabled {
		ocrEngine = ocr.NewEngine(cfg.OCRLanguages)
	}
	registry := extract.NewRegistry(ocrEngine)

	var nsqProducer *nsq.Producer
	if cfg.NSQEnabled {
		nsqProducer, err = nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ producer", "error", err)
			os.Exit(1)
		}
		defer nsqProducer.Stop()
	}

	retryPolicy := retry.NewPolicy(cfg.RetryMaxAttempts, cfg.RetryBaseDelay)

	// Feature: Sync
	runRepo := syncrun.NewPostgresRepo(db)
	var publisher ingest.Publisher
	if nsqProducer != nil {
		publisher = nsqProducer
	}
	engine := ingest.NewEngine(driveClient, vecStore, embedder, registry, retryPolicy, publisher, runRepo)
	syncService := syncrun.NewService(engine, runRepo, vecStore, cfg.SyncTimeout)
	syncHandler := syncrun.NewHandler(syncService)

	// Feature: Synonyms
	synonymRepo := synonym.NewPostgresRepo(db)
	synonymService := synonym.NewService(synonymRepo)
	if err := synonymService.Load(context.Background()); err != nil {
		slog.Warn("failed to load synonym dictionary, starting empty", "error", err)
	}
	synonymHandler := synonym.NewHandler(synonymService)

	// Feature: Search
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retrievalService := retrieval.NewService(embedder, vecStore, retryPolicy, retrieval.Options{
		HighThreshold:  float64(cfg.SearchHighThreshold),
		LowThreshold:   float64(cfg.SearchLowThreshold),
		TopK:           cfg.SearchTopK,
		MinVectorHits:  cfg.SearchMinVectorHits,
		MinKeywordHits: cfg.SearchMinKeywordHits,
		ScanLimit:      cfg.SearchScanLimit,
		PerSourceCap:   cfg.SearchPerSourceCap,
		MaxResults:     cfg.SearchMaxResults,
	}, queryLogger)

	expander := expand.NewExpander(synonymService, rewriter, cfg.QueryVariantCap)
	searchHandler := search.NewHandler(expander, retrievalService)

	// Routes
	http.Handle("POST /sync", middleware.CorrelationID(http.HandlerFunc(syncHandler.TriggerSync)))
	http.Handle("GET /sync/runs", middleware.CorrelationID(http.HandlerFunc(syncHandler.ListRuns)))
	http.Handle("GET /documents", middleware.CorrelationID(http.HandlerFunc(syncHandler.ListDocuments)))

	http.Handle("POST /search", middleware.CorrelationID(http.HandlerFunc(searchHandler.Search)))

	http.Handle("GET /synonyms", middleware.CorrelationID(http.HandlerFunc(synonymHandler.GetSynonyms)))
	http.Handle("PUT /synonyms", middleware.CorrelationID(http.HandlerFunc(synonymHandler.UpdateSynonyms)))

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// 6. Start Server
	slog.Info("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

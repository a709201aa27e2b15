package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/automaton-trust/internal/application"
	"github.com/bryanwahyu/automaton-trust/internal/application/tracking"
	"github.com/bryanwahyu/automaton-trust/internal/config"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
	"github.com/bryanwahyu/automaton-trust/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/automaton-trust/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/automaton-trust/internal/infra/db/postgres"
	"github.com/bryanwahyu/automaton-trust/internal/infra/httpclient"
	"github.com/bryanwahyu/automaton-trust/internal/infra/httpserver"
	"github.com/bryanwahyu/automaton-trust/internal/infra/mock"
	minioStore "github.com/bryanwahyu/automaton-trust/internal/infra/storage"
	"github.com/bryanwahyu/automaton-trust/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("config %s not found, using defaults", path)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}

	// init repo
	repo, db, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("%s connect error: %v", cfg.Database.Driver, err)
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init transport
	var transport domain.Transport
	if cfg.Upstream.Mock {
		log.Printf("upstream=mock processing_polls=%d", cfg.Upstream.MockPolls)
		transport = mock.New(cfg.Upstream.MockPolls)
	} else {
		log.Printf("upstream=%s", cfg.Upstream.BaseURL)
		client := &http.Client{Timeout: cfg.Upstream.Timeout}
		transport = httpclient.New(cfg.Upstream.BaseURL, client)
		checkers["upstream"] = &middleware.UpstreamHealthChecker{BaseURL: cfg.Upstream.BaseURL, Client: client}
	}

	// init service
	svc := &tracking.Service{
		Transport:   transport,
		Repo:        repo,
		Clock:       application.SystemClock{},
		Interval:    cfg.Upstream.PollInterval,
		Logger:      log.Default(),
		OnTracked:   middleware.RecordJobTracked,
		OnTerminal:  middleware.RecordJobTerminal,
		OnCancelled: middleware.RecordJobCancelled,
	}
	defer svc.Close()

	// init minio (optional)
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Archive = store
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		HealthCheckers: checkers,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openRepository picks the snapshot store from database.driver. db is nil for
// the in-memory store.
func openRepository(ctx context.Context, cfg *config.Config) (domain.Repository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.Migrate {
			if err := mysqlp.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return mysqlp.NewJobRepository(db), db, nil
	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.Migrate {
			if err := pgp.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return pgp.NewJobRepository(db), db, nil
	default:
		return memory.NewJobRepository(), nil, nil
	}
}

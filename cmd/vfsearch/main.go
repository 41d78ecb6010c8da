package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/config"
	dbRedis "github.com/cairnforge/vfsearch/internal/db/redis"
	"github.com/cairnforge/vfsearch/internal/fields"
	"github.com/cairnforge/vfsearch/internal/locale"
	logpkg "github.com/cairnforge/vfsearch/internal/logger"
	"github.com/cairnforge/vfsearch/internal/metrics"
	documentrepo "github.com/cairnforge/vfsearch/internal/repository/document"
	resourcerepo "github.com/cairnforge/vfsearch/internal/repository/resource"
	searchrepo "github.com/cairnforge/vfsearch/internal/repository/search"
	chiTransport "github.com/cairnforge/vfsearch/internal/transport/chi"
	healthuc "github.com/cairnforge/vfsearch/internal/usecase/health"
	searchuc "github.com/cairnforge/vfsearch/internal/usecase/search"
	"github.com/cairnforge/vfsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vfsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Index.Name),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	available, err := parseLocales(cfg.Locales.Available)
	if err != nil {
		logger.Fatal("Invalid locale configuration", zap.Error(err))
	}
	if _, err := fields.NewConfiguration(available, fieldDefsFromConfig(cfg.Fields)); err != nil {
		logger.Fatal("Invalid field configuration", zap.Error(err))
	}

	// Create repositories (domain-native, no adapters)
	resourceRepo := resourcerepo.New(store, cfg.Index.ResourcePrefix)
	searchRepo := searchrepo.New(store, cfg.Index.Name, cfg.Index.KeyPrefix)
	docRepo := documentrepo.New(store, cfg.Index.Name, cfg.Index.KeyPrefix)

	// Create use case services
	searchSvc := searchuc.New(searchRepo, resourceRepo, resourceRepo, cfg.Index.MaxRows, logger)
	healthSvc := healthuc.New(store, store, cfg.Index.Name)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, docRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func parseLocales(list []string) ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(list))
	for _, l := range list {
		tag, err := locale.Parse(l)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func fieldDefsFromConfig(fcs []config.FieldConfig) []fields.Definition {
	defs := make([]fields.Definition, 0, len(fcs))
	for _, fc := range fcs {
		def := fields.Definition{
			Name:    fc.Name,
			Default: fc.Default,
			Weight:  fc.Weight,
		}
		if fc.Locale != "" {
			if tag, err := locale.Parse(fc.Locale); err == nil {
				def.Locale = tag
			}
		}
		for _, m := range fc.Mappings {
			def.Mappings = append(def.Mappings, fields.Mapping{
				Type:    fields.MappingType(m.Type),
				Param:   m.Param,
				Default: m.Default,
			})
		}
		defs = append(defs, def)
	}
	return defs
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

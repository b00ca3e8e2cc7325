package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"researchagent/internal/config"
	"researchagent/internal/middleware"
	"researchagent/internal/research"
	"researchagent/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// ── Job store ────────────────────────────────────────────
	var jobs research.JobStore
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisJobStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.ResultTTL)
		if err != nil {
			log.WithError(err).Fatal("redis connect")
		}
		defer rdb.Close()
		jobs = rdb
		log.WithField("addr", cfg.RedisAddr).Info("using redis job store")
	} else {
		jobs = store.NewMemoryJobStore()
		log.Info("using in-memory job store")
	}

	// ── File store ───────────────────────────────────────────
	var files research.FileStore
	if cfg.MinioEndpoint != "" {
		ms, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			log.WithError(err).Fatal("minio connect")
		}
		files = ms
		log.WithField("bucket", cfg.MinioBucket).Info("using minio file store")
	} else {
		ls, err := store.NewLocalStore(cfg.DataDir)
		if err != nil {
			log.WithError(err).Fatal("local file store")
		}
		files = ls
		log.WithField("dir", cfg.DataDir).Info("using local file store")
	}

	// ── Archive (optional) ───────────────────────────────────
	var archive research.Archive
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.WithError(err).Fatal("mongo connect")
		}
		defer mongoClient.Disconnect(ctx)
		archive = store.NewMongoArchive(mongoClient.Database(cfg.MongoDB))
		log.WithField("db", cfg.MongoDB).Info("archiving reports to mongodb")
	}

	// ── Research pipeline ────────────────────────────────────
	var ai *research.AIClient
	if cfg.AIServiceURL != "" {
		ai = research.NewAIClient(cfg.AIServiceURL)
	} else {
		log.Warn("AI_SERVICE_URL not set, research runs return demonstration data")
	}
	agent := research.NewAgent(ai, cfg.MaxSources, log)
	runner := research.NewRunner(jobs, files, archive, agent, log)
	handler := research.NewHandler(jobs, files, archive, runner, log)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
	})

	handler.Routes(r)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("research agent listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

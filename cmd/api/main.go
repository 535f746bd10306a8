package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AD-em/orphan-database/internal/auth"
	"github.com/AD-em/orphan-database/internal/config"
	"github.com/AD-em/orphan-database/internal/logger"
	"github.com/AD-em/orphan-database/internal/server"
	"github.com/AD-em/orphan-database/internal/session"
	"github.com/AD-em/orphan-database/internal/storage"
	"github.com/AD-em/orphan-database/internal/upload"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.Init()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.EnsureSchema(ctx, dbPool, logg); err != nil {
		logg.Fatal("ensure schema", zap.Error(err))
	}

	deps := server.Dependencies{
		Config: cfg,
		Logger: logg,
		DB:     dbPool,
	}

	var sessionStore session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logg.Fatal("connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		deps.Redis = redisClient
		sessionStore = session.NewRedisStore(redisClient)
	default:
		sessionStore = session.NewPostgresStore(dbPool)
	}

	codec := session.NewCookieCodec(cfg.Session)
	authenticator := session.NewAuthenticator(codec, sessionStore)

	authService := auth.NewService(auth.NewRepository(dbPool), sessionStore, cfg.Auth, cfg.Session.TTL)

	var uploadService *upload.Service
	gate := upload.NewGatekeeper(authenticator)

	var namer upload.Namer
	switch cfg.Upload.Naming {
	case config.NamingRandom:
		namer = upload.RandomNamer{}
	default:
		namer = upload.NewTimestampNamer()
	}

	switch cfg.Upload.Backend {
	case config.UploadBackendS3:
		minioClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			logg.Fatal("connect minio", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			logg.Fatal("ensure bucket", zap.Error(err))
		}
		deps.ObjectStore = minioClient
		uploadService = upload.NewService(gate, upload.NewMinIOStore(minioClient, cfg.MinIO.Bucket), namer, logg)
	default:
		diskStore, err := upload.NewDiskStore(cfg.Upload.PublicDir)
		if err != nil {
			logg.Fatal("prepare upload directories", zap.Error(err))
		}
		deps.UploadDirs = diskStore
		uploadService = upload.NewService(gate, diskStore, namer, logg)
	}

	deps.Codec = codec
	deps.Authenticator = authenticator
	deps.AuthService = authService
	deps.UploadService = uploadService

	router := server.NewRouter(deps)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("orphan-database API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}

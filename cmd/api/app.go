package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/njprem/lighthouse-api/internal/config"
	"github.com/njprem/lighthouse-api/internal/media"
	"github.com/njprem/lighthouse-api/internal/metrics"
	"github.com/njprem/lighthouse-api/internal/repository/memory"
	minioRepo "github.com/njprem/lighthouse-api/internal/repository/minio"
	"github.com/njprem/lighthouse-api/internal/repository/ports"
	"github.com/njprem/lighthouse-api/internal/repository/postgres"
	"github.com/njprem/lighthouse-api/internal/service"
	"github.com/njprem/lighthouse-api/internal/transport/mail"
	"github.com/njprem/lighthouse-api/internal/util"
)

// app holds the wired services shared by serve and seed.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	store    ports.Store
	auth     *service.AuthService
	profiles *service.ProfileService
	close    func()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Store, func(), error) {
	if cfg.DatabaseDriver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}
	db, err := postgres.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db.DB); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database migrations applied")
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ObjectStorage, error) {
	if !cfg.StorageEnabled() {
		logger.Info("object storage not configured; image uploads disabled")
		return nil, nil
	}
	client, err := minioRepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	storage := minioRepo.NewStorage(client, cfg.MinIOPublicURL)
	if err := storage.EnsureBucket(ctx, cfg.MinIOBucketProfile, cfg.MinIORegion); err != nil {
		return nil, fmt.Errorf("minio bucket: %w", err)
	}
	return storage, nil
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		closeStore()
		return nil, err
	}

	hasher := util.NewPasswordHasher(cfg.BcryptCost, cfg.HashConcurrency)
	hasher.Observe(metrics.ObserveHash)
	sessions := util.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, util.WithSessionIssuer(cfg.JWTIssuer))

	avatar := service.AvatarConfig{
		Bucket:    cfg.MinIOBucketProfile,
		MaxBytes:  cfg.AvatarMaxBytes,
		Dimension: cfg.AvatarDimension,
	}
	if cfg.FFMPEGPath != "" {
		avatar.Processor = media.NewFFMPEGProcessor(cfg.FFMPEGPath, cfg.AvatarDimension)
	}

	var mailer service.PasswordResetMailer
	if m := mail.NewPasswordResetMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom); m.Configured() {
		mailer = m
	} else {
		logger.Info("smtp not configured; reset links are not mailed")
	}

	auth := service.NewAuthService(store, hasher, sessions, storage, mailer, logger, service.AuthServiceConfig{
		ResetTTL:      cfg.PasswordResetTTL,
		ResetLinkBase: cfg.FrontendBaseURL,
		Avatar:        avatar,
	})
	profiles := service.NewProfileService(store, auth, storage, logger, avatar)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		auth:     auth,
		profiles: profiles,
		close:    closeStore,
	}, nil
}

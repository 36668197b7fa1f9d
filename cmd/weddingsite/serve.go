package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"weddingsite/config"
	_ "weddingsite/docs"
	"weddingsite/internal/adapters/archive"
	"weddingsite/internal/adapters/auth"
	"weddingsite/internal/adapters/email"
	"weddingsite/internal/adapters/storage"
	"weddingsite/internal/adapters/whatsapp"
	deliveryhttp "weddingsite/internal/delivery/http"
	"weddingsite/internal/delivery/http/controllers"
	"weddingsite/internal/domain"
	"weddingsite/internal/repository/postgres"
	"weddingsite/internal/services"
	"weddingsite/internal/telemetry"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			return runServe(commandContext(cmd), cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracer shutdown", "err", err)
		}
	}()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	blobs, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("photo storage: %w", err)
	}

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.Region,
			AccessKeyID:        cfg.AWS.AccessKeyID,
			SecretAccessKey:    cfg.AWS.SecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)

	var texts domain.TextSender
	if cfg.WhatsApp.Enabled {
		wa, err := whatsapp.New(ctx, whatsapp.Config{DataDir: cfg.WhatsApp.DataDir}, logger)
		if err != nil {
			return err
		}
		if err := wa.Connect(); err != nil {
			logger.Warn("whatsapp notifications disabled", "err", err)
		} else {
			defer wa.Disconnect()
			texts = wa
		}
	}

	guestRepo := postgres.NewGuestRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	photoRepo := postgres.NewPhotoRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	adminRepo := postgres.NewAdminUserRepository(db)

	timeout := cfg.RequestTimeout
	notifier := services.NewNotificationService(mailer, email.NewTemplateRenderer(), texts, cfg.PublicBaseURL, logger)
	guestSvc := services.NewGuestService(guestRepo, blobs, notifier, logger, timeout)
	rsvpSvc := services.NewRSVPService(guestRepo, rsvpRepo, notifier, logger, timeout)
	photoSvc := services.NewPhotoService(photoRepo, guestRepo, settingsRepo, blobs, archive.NewZipArchiver(),
		services.PhotoConfig{MaxBytes: cfg.Photo.MaxBytes, URLTTL: cfg.Photo.URLTTL}, logger, timeout)
	messageSvc := services.NewMessageService(messageRepo, timeout)
	settingsSvc := services.NewSettingsService(settingsRepo, timeout)
	authSvc := services.NewAuthService(adminRepo, auth.NewBcryptHasher(0), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, timeout)

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Guest:    controllers.NewGuestController(logger, guestSvc),
		RSVP:     controllers.NewRSVPController(logger, rsvpSvc),
		Photo:    controllers.NewPhotoController(logger, photoSvc, cfg.Photo.MaxBytes),
		Message:  controllers.NewMessageController(logger, messageSvc),
		Settings: controllers.NewSettingsController(logger, settingsSvc),
		Auth:     controllers.NewAuthController(logger, authSvc, cfg.JWTExpiry, cfg.IsProduction()),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewHandler(router, serviceName, cfg.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

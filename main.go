package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pgfinder/pg-api/app"
	"pgfinder/pg-api/config"
	"pgfinder/pg-api/db"
	"pgfinder/pg-api/internal"
	"pgfinder/pg-api/internal/account"
	"pgfinder/pg-api/internal/auth"
	"pgfinder/pg-api/internal/images"
	"pgfinder/pg-api/internal/listing"
	"pgfinder/pg-api/internal/notify"
	"pgfinder/pg-api/internal/seed"
	"pgfinder/pg-api/internal/service"
	"pgfinder/pg-api/internal/store"
	"pgfinder/pg-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	err := config.Setup()
	if errors.Is(err, config.ErrNoSecret) {
		fmt.Printf("jwt.secret is missing, you can use this one:\n%s\n", config.GenSecret())
		os.Exit(1)
	}
	if err != nil {
		panic(err)
	}

	cfg := config.Load()
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := app.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := wire(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize", zap.Error(err))
	}

	if cfg.Seed {
		res, err := seed.Run(ctx, d.Users, store.NewListings(d.DB), security.New())
		if err != nil {
			zap.L().Fatal("Failed to seed database", zap.Error(err))
		}
		zap.L().Info("Database seeded", zap.String("owner_id", res.OwnerID), zap.Int("listings", res.Listings))
		return
	}

	router, err := app.NewRouter(ctx, d)
	if err != nil {
		zap.L().Fatal("Failed to build router", zap.Error(err))
	}

	go service.CodeCleanup(ctx, cfg.OTPCleanupInterval, cfg.OTPRetention, d.Codes)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Failed to shut down cleanly", zap.Error(err))
		}
	}()

	zap.L().Info("Server starting", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}

// wire builds every store and service from cfg.
func wire(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	conn, err := db.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	var sender notify.Sender
	switch cfg.MailDriver {
	case "log":
		sender = notify.NewLogSender(zap.L())
	default:
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.MailHost,
			Port:     cfg.MailPort,
			Username: cfg.MailUsername,
			Password: cfg.MailPassword,
			From:     cfg.MailFrom,
		})
	}

	var imageStore listing.ImageStore = images.Inline{}

	if cfg.StorageType == "s3" {
		s3, err := images.NewS3(ctx, images.S3Config{
			Region:          cfg.AWSRegion,
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Bucket:          cfg.AWSBucket,
			Endpoint:        cfg.AWSEndpoint,
			PublicURL:       cfg.AWSPublicURL,
		})
		if err != nil {
			return nil, err
		}
		imageStore = s3
	}

	users, codes, listings := store.NewUsers(conn), store.NewCodes(conn), store.NewListings(conn)
	tokens := security.NewTokens(cfg.JWTSecret, cfg.JWTTTL, time.Now)
	hasher := security.New()

	return &internal.Deps{
		Config: cfg,
		DB:     conn,
		Users:  users,
		Codes:  codes,
		Tokens: tokens,
		Auth: auth.New(users, codes, sender, hasher, tokens, auth.Config{
			CodeLength:  cfg.OTPLength,
			CodeTTL:     cfg.OTPTTL,
			ResetGrace:  cfg.OTPResetGrace,
			FrontendURL: cfg.FrontendURL,
		}),
		Accounts: account.New(users, listings, hasher, imageStore),
		Listings: listing.New(listings, users, imageStore),
	}, nil
}

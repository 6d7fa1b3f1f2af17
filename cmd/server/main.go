package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/handler"
	"github.com/nandanfoods/grocer-api/internal/otp"
	"github.com/nandanfoods/grocer-api/internal/ratelimit"
	"github.com/nandanfoods/grocer-api/internal/repository"
	"github.com/nandanfoods/grocer-api/internal/storage"
	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/auth"
	"github.com/nandanfoods/grocer-api/shared/mailer"
	"github.com/nandanfoods/grocer-api/shared/provider"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

const shutdownGrace = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	imageStore, err := storage.NewS3ImageStore(ctx, cfg.S3)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create image store")
	}

	validator, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	productRepo := repository.NewProductMongoRepository(db)
	addressRepo := repository.NewAddressMongoRepository(db)
	orderRepo := repository.NewOrderMongoRepository(db)
	resetTokenRepo := repository.NewResetTokenMongoRepository(ctx, &logger, db)

	otpEngine := otp.NewEngine(userRepo, cfg.Token.OTPChallengeTTL)
	otpMailer := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	tokenIssuer := auth.NewTokenIssuer(cfg.Token.Secret, cfg.Token.Issuer)
	cookies := auth.NewCookieBaker(cfg.Server.Production())
	googleVerifier := provider.NewGoogleVerifier(cfg.Google.ClientID)

	authUsecase := usecase.NewAuthUsecase(userRepo, otpEngine, otpMailer, googleVerifier, tokenIssuer, cfg.Token)
	resetUsecase := usecase.NewPasswordResetUsecase(userRepo, resetTokenRepo, otpEngine, otpMailer, tokenIssuer, cfg.Token, &logger)
	sellerUsecase := usecase.NewSellerUsecase(cfg.Seller, tokenIssuer, cfg.Token)
	cartUsecase := usecase.NewCartUsecase(userRepo)
	addressUsecase := usecase.NewAddressUsecase(addressRepo)
	productUsecase := usecase.NewProductUsecase(productRepo, imageStore)
	orderUsecase := usecase.NewOrderUsecase(orderRepo, productRepo)

	limiter := ratelimit.New(redisClient, ratelimit.Config{
		AuthMaxAttempts:   cfg.RateLimit.AuthMaxAttempts,
		VerifyMaxAttempts: cfg.RateLimit.VerifyMaxAttempts,
		Window:            cfg.RateLimit.Window,
	})

	router := handler.NewRouter(handler.Handlers{
		Middleware: handler.NewMiddleware(tokenIssuer, limiter, &logger),
		User:       handler.NewUserHandler(authUsecase, resetUsecase, cookies, validator, cfg.Token, &logger),
		Seller:     handler.NewSellerHandler(sellerUsecase, cookies, validator, cfg.Token, &logger),
		Product:    handler.NewProductHandler(productUsecase, validator, &logger),
		Cart:       handler.NewCartHandler(cartUsecase, validator, &logger),
		Address:    handler.NewAddressHandler(addressUsecase, validator, &logger),
		Order:      handler.NewOrderHandler(orderUsecase, validator, &logger),
	})

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/adapter/handler"
	"github.com/srgjo27/urban_spark/internal/adapter/payment"
	firestorerepo "github.com/srgjo27/urban_spark/internal/adapter/repository/firestore"
	"github.com/srgjo27/urban_spark/internal/adapter/repository/local"
	"github.com/srgjo27/urban_spark/internal/adapter/repository/postgres"
	"github.com/srgjo27/urban_spark/internal/adapter/repository/session"
	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
	"github.com/srgjo27/urban_spark/internal/core/services"
	"github.com/srgjo27/urban_spark/internal/platform/config"
	"github.com/srgjo27/urban_spark/internal/platform/database"
	"github.com/srgjo27/urban_spark/internal/platform/firebase"
	"github.com/srgjo27/urban_spark/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		zl.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zl.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		zl.Info("Redis connected successfully")
	}

	bookingRepo, closeRepo, err := newBookingRepository(ctx, cfg, redisClient, zl)
	if err != nil {
		zl.Fatal("Failed to initialize booking store", zap.Error(err))
	}
	defer closeRepo()
	zl.Info("Booking store selected", zap.String("backend", bookingRepo.Name()))

	var (
		drafts   ports.DraftRepository
		sessions ports.AdminSessionRepository
	)
	if redisClient != nil {
		drafts = session.NewRedisDraftRepository(redisClient)
		sessions = session.NewRedisAdminSessions(redisClient)
	} else {
		mem := session.NewMemoryStore(zl)
		drafts = mem.Drafts()
		sessions = mem.AdminSessions()
		go mem.RunCleanup(ctx, time.Minute)
	}

	var gateway ports.PaymentGateway
	if !config.IsPlaceholder(cfg.StripeKey) {
		gateway = payment.NewStripeGateway(cfg.StripeKey, zl)
	} else {
		gateway = payment.NewSimulatedGateway(cfg.PaymentOnlineDelay, cfg.PaymentCashDelay, zl)
	}

	var policy domain.TransitionPolicy = domain.PermissiveTransitions{}
	if cfg.StrictStatusTransitions {
		policy = domain.StrictTransitions{}
	}

	catalog := domain.DefaultCatalog()

	bookingService := services.NewBookingService(bookingRepo, policy, services.RetryConfig{
		Attempts:  cfg.StoreRetryAttempts,
		BaseDelay: cfg.StoreRetryDelay,
	}, zl)

	wizardService := services.NewWizardService(catalog, drafts, bookingService, gateway, services.WizardConfig{
		DraftTTL:       cfg.DraftTTL,
		PaymentTimeout: cfg.PaymentTimeout,
		Currency:       cfg.Currency,
	}, zl)

	adminService := services.NewAdminService(cfg.AdminPIN, sessions, cfg.AdminSessionTTL, zl)

	router, err := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		LoginRate:      cfg.LoginRate,
		PaymentGateway: gateway.Name(),
	}, handler.Handlers{
		Catalog:  handler.NewCatalogHandler(catalog),
		Wizard:   handler.NewWizardHandler(wizardService),
		Bookings: handler.NewBookingHandler(bookingService),
		Admin:    handler.NewAdminHandler(adminService, bookingService, int64(cfg.AdminSessionTTL.Seconds()), zl),
	}, adminService, bookingService, zl)
	if err != nil {
		zl.Fatal("Failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.PaymentTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zl.Info("Server starting", zap.String("addr", server.Addr), zap.String("payment_gateway", gateway.Name()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server startup failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	zl.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	zl.Info("Server exiting")
}

// newBookingRepository picks Firestore, then Postgres, then the local blob
// store. The returned func releases the backend's connections.
func newBookingRepository(ctx context.Context, cfg *config.Config, redisClient *redis.Client, zl *zap.Logger) (ports.BookingRepository, func(), error) {
	switch cfg.BookingBackend() {
	case config.BackendFirestore:
		client, err := firebase.NewFirestore(ctx, firebase.Config{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsPath: cfg.FirebaseCredentialsPath,
		}, zl)
		if err != nil {
			return nil, nil, err
		}
		return firestorerepo.NewBookingRepository(client, cfg.FirebaseCollection, zl), func() { client.Close() }, nil

	case config.BackendPostgres:
		db, err := database.NewPostgresDB(database.Config{URL: cfg.DatabaseURL}, zl)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to db after retries: %w", err)
		}
		configurePool(db)

		repo := postgres.NewBookingRepository(db, cfg.DatabaseURL, zl)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	}

	var blob local.Blob
	if redisClient != nil {
		blob = local.NewRedisBlob(redisClient, cfg.BookingsKey, zl)
	} else {
		blob = local.NewFileBlob(cfg.LocalStorePath)
	}
	return local.NewBookingRepository(blob, zl), func() {}, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
}

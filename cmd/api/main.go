package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"

	"guestbook/config"
	_ "guestbook/docs"
	"guestbook/internal/adapters/auth"
	"guestbook/internal/adapters/cache"
	"guestbook/internal/adapters/queue"
	"guestbook/internal/adapters/storage"
	deliveryhttp "guestbook/internal/delivery/http"
	"guestbook/internal/delivery/http/controllers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/repository/postgres"
	"guestbook/internal/services"
)

// @title Guestbook API
// @version 1.0
// @description Event pages with RSVP, guest photo galleries and credit purchases.

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	logger := config.NewLogger("api")
	if err := run(logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	redisClient, err := cache.NewRedisClient(ctx, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	sessions := cache.NewSessionCache(redisClient)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer asynqClient.Close()
	jobs := queue.NewJobQueue(asynqClient)

	objects, err := storage.NewS3Store(storage.Config{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	guestTokens := auth.NewGuestTokenSigner(cfg.GuestTokenSecret, cfg.GuestTokenExpiry)

	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	loginCodeRepo := postgres.NewLoginCodeRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	invitationRepo := postgres.NewEventInvitationRepository(db)
	mediaRepo := postgres.NewMediaRepository(db)
	packageRepo := postgres.NewCreditPackageRepository(db)
	ledger := postgres.NewCreditLedger(db)

	timeout := cfg.ContextTimeout
	access := services.NewAccessService(eventRepo, guestRepo, guestTokens, timeout)
	userService := services.NewUserService(userRepo, roleRepo, loginCodeRepo, ledger, issuer, sessions, cfg.JWTExpiry, jobs, logger, timeout)
	eventService := services.NewEventService(eventRepo, access, timeout)
	rsvpService := services.NewRSVPService(eventRepo, guestRepo, guestTokens, jobs, cfg.PublicBaseURL, logger, timeout)
	guestService := services.NewGuestService(eventRepo, guestRepo, timeout)
	invitationService := services.NewInvitationService(eventRepo, invitationRepo, userRepo, jobs, cfg.PublicBaseURL, logger, timeout)
	galleryService := services.NewGalleryService(access, mediaRepo, userRepo, objects, jobs, logger, timeout)
	purchaseService := services.NewPurchaseService(packageRepo, userRepo, ledger, timeout)
	creditAdminService := services.NewCreditAdminService(packageRepo, ledger, timeout)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:        logger,
		Verifier:      verifier,
		Sessions:      sessions,
		WebhookSecret: cfg.PurchaseWebhookKey,
		Auth:          controllers.NewAuthController(logger, userService),
		Users:         controllers.NewUserController(logger, userService),
		Events:        controllers.NewEventController(logger, eventService),
		RSVPs:         controllers.NewRSVPController(logger, rsvpService),
		Guests:        controllers.NewGuestController(logger, guestService),
		Invitations:   controllers.NewInvitationController(logger, invitationService),
		Gallery:       controllers.NewGalleryController(logger, galleryService),
		Purchases:     controllers.NewPurchaseController(logger, purchaseService),
		CreditAdmin:   controllers.NewCreditAdminController(logger, creditAdminService),
		Health:        controllers.NewHealthController(logger, db),
	})
	if cfg.PurchaseWebhookKey == "" {
		logger.Warn("PURCHASE_WEBHOOK_SECRET is empty; purchase webhook signatures are not checked")
	}

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, router))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting api", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

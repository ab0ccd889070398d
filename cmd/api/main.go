package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mehul-pande/accountgate/internal/api/handlers"
	"github.com/mehul-pande/accountgate/internal/api/router"
	"github.com/mehul-pande/accountgate/internal/auth"
	"github.com/mehul-pande/accountgate/internal/billing"
	"github.com/mehul-pande/accountgate/internal/config"
	"github.com/mehul-pande/accountgate/internal/db"
	"github.com/mehul-pande/accountgate/internal/pkg/logger"
	"github.com/mehul-pande/accountgate/internal/pkg/validator"
	"github.com/mehul-pande/accountgate/internal/repository/sqlite"
	"github.com/mehul-pande/accountgate/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed opening database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx, database); err != nil {
		log.Fatalf("failed ensuring schema: %v", err)
	}

	userRepo := sqlite.NewUserRepository(database)
	subRepo := sqlite.NewSubscriptionRepository(database)

	oauth := auth.NewOAuth(cfg.OAuth)
	provider := billing.NewStripeProvider(cfg.Stripe)

	userService := services.NewUserService(userRepo, subRepo, cfg.Auth.BCryptCost, log)
	billingService := services.NewBillingService(userRepo, subRepo, provider, log)

	val := validator.New()

	h := router.Handlers{
		Health:  handlers.NewHealthHandler(database),
		Auth:    handlers.NewAuthHandler(userService, oauth, cfg, log, val),
		User:    handlers.NewUserHandler(userService, log),
		Billing: handlers.NewBillingHandler(billingService, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("forced shutdown: %v", err)
	}
}

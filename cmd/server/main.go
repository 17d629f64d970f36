package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"crm-backend/internal/access"
	"crm-backend/internal/auth"
	"crm-backend/internal/cache"
	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/db"
	"crm-backend/internal/handlers"
	"crm-backend/internal/health"
	httpRouter "crm-backend/internal/http"
	"crm-backend/internal/invoicing"
	"crm-backend/internal/logger"
	"crm-backend/internal/mailer"
	"crm-backend/internal/middleware"
	"crm-backend/internal/realtime"
	"crm-backend/internal/repositories"
	"crm-backend/internal/services"
	"crm-backend/internal/storage"
	"crm-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	issueToken := flag.String("issue-token", "", "Print a session token for the given email and exit")
	tokenName := flag.String("name", "", "Display name embedded in an issued token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(cfg.Server.Env, cfg.Log.Level)

	jwtManager := auth.NewJWTManager(cfg)

	// Sessions are issued by the identity provider in production; this is for local use and scripts
	if *issueToken != "" {
		token, err := jwtManager.GenerateToken(*issueToken, *tokenName)
		if err != nil {
			log.WithError(err).Fatal("[Auth] Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("[DB] Failed to connect")
	}
	defer pool.Close()

	log.Info("Running database migrations...")
	migrateCtx, migrateCancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.NewMigratorWithFS(pool, migrations.FS, ".", log).RunMigrations(migrateCtx)
	migrateCancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Redis is optional - views fall back to the database when it is unavailable
	views, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.WithError(err).Warn("[Redis] Cache unavailable, serving views uncached")
	} else {
		log.Info("[Redis] Cache connected successfully")
	}
	if client := views.Client(); client != nil {
		defer client.Close()
	}

	hub := realtime.NewHub(log)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	revalidator := cache.NewRevalidator(views, log, hub)

	archive, err := storage.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("[Storage] Failed to configure PDF archive")
	}
	if !archive.Enabled() {
		log.Info("[Storage] Not configured, invoice PDFs will not be archived")
	}

	invoiceMailer := mailer.New(cfg)
	if !invoiceMailer.Enabled() {
		log.Warn("[Mailer] SMTP not configured, sending invoices is disabled")
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	clientRepo := repositories.NewClientRepository(pool)
	projectRepo := repositories.NewProjectRepository(pool)
	taskRepo := repositories.NewTaskRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	analyticsRepo := repositories.NewAnalyticsRepository(pool)
	authorizer := access.NewAuthorizer(repositories.NewOwnershipRepository(pool))

	// Services
	userService := services.NewUserService(userRepo, revalidator, log)
	clientService := services.NewClientService(clientRepo, authorizer, views, revalidator, log)
	projectService := services.NewProjectService(projectRepo, authorizer, views, revalidator, log)
	taskService := services.NewTaskService(taskRepo, authorizer, views, revalidator, log)
	invoiceService := services.NewInvoiceService(
		invoiceRepo,
		authorizer,
		views,
		revalidator,
		invoicing.NewRenderer(),
		invoiceMailer,
		archive,
		log,
	)
	analyticsService := services.NewAnalyticsService(analyticsRepo, views)

	var cachePinger health.Pinger
	if client := views.Client(); client != nil {
		cachePinger = health.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}

	router := httpRouter.NewRouter(
		handlers.NewUserHandler(userService, log),
		handlers.NewClientHandler(clientService, log),
		handlers.NewProjectHandler(projectService, log),
		handlers.NewTaskHandler(taskService, log),
		handlers.NewInvoiceHandler(invoiceService, log),
		handlers.NewAnalyticsHandler(analyticsService, log),
		handlers.NewRealtimeHandler(hub),
		handlers.NewHealthHandler(health.NewHealthChecker(pool, cachePinger)),
		middleware.NewAuthMiddleware(jwtManager, userService, log),
		log,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(log)(corsMiddleware(router))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	waitSignal(log, cancel, server)
	wg.Wait()
}

func waitSignal(log logrus.FieldLogger, cancel context.CancelFunc, server *http.Server) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	sig := <-ch

	log.WithField("signal", sig.String()).Info("Shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown")
	}
}

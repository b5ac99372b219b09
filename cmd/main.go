package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencycrm/internal/ai"
	"agencycrm/internal/caching"
	"agencycrm/internal/config"
	"agencycrm/internal/handlers"
	"agencycrm/internal/jobs"
	"agencycrm/internal/jobs/background"
	"agencycrm/internal/logger"
	"agencycrm/internal/middleware"
	"agencycrm/internal/monitoring"
	"agencycrm/internal/repositories"
	"agencycrm/internal/services"
	"agencycrm/internal/whatsapp"
	"agencycrm/pkg/database"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	version      = "1.0.0"
	serviceName  = "agencycrm"
	shutdownWait = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.GeneratedJWTSecret {
		log.Warn("JWT_SECRET not set, using a generated secret; issued tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	pool, err := database.NewPool(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	clientRepo := repositories.NewClientRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	leadRepo := repositories.NewLeadRepo(pool)
	proposalRepo := repositories.NewProposalRepo(pool)

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err := cacheSvc.Ping(ctx); err != nil {
		log.Warn("redis unavailable, cache reads will fall back to the database", zap.Error(err))
	}

	minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal("failed to initialize MinIO client", zap.Error(err))
	}
	if err := minioSvc.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
		log.Warn("proposal bucket not ready", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
	}

	var mailer services.Mailer
	if cfg.Mail.Host != "" {
		mailer = services.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
	} else {
		log.Info("SMTP_HOST not set, proposal emails disabled")
	}

	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, log)
	if cfg.AI.APIKey == "" {
		log.Info("OPENAI_API_KEY not set, AI endpoints will return a notice")
	}
	whatsappClient := whatsapp.NewClient(time.Duration(cfg.WhatsApp.TimeoutSeconds)*time.Second, cfg.WhatsApp.Retries, log)

	metrics := monitoring.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(registry); err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	// Services
	settingsSvc := services.NewSettingsService(tenantRepo, cacheSvc, log)
	gateway := services.NewMessageGateway(settingsSvc, whatsappClient, log)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, clientRepo, cacheSvc, log)
	followUpSvc := services.NewFollowUpService(leadRepo, aiClient, log)
	clientSvc := services.NewClientService(clientRepo, log)
	leadSvc := services.NewLeadService(leadRepo, cacheSvc, log)
	proposalSvc := services.NewProposalService(proposalRepo, settingsSvc, minioSvc, mailer, cfg.Minio.Bucket, now, log)

	scanner := jobs.NewEligibilityScanner(leadRepo, proposalRepo, invoiceRepo)
	reminderJob := jobs.NewReminderJob(scanner, settingsSvc, gateway, invoiceRepo, metrics, log)
	alertSvc := jobs.NewAlertService(scanner, cacheSvc, log)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc, cfg.Minio.Bucket, version)
	reminderHandlers := handlers.NewReminderHandlers(reminderJob, now, log)
	automationHandlers := handlers.NewAutomationHandlers(alertSvc, followUpSvc, now, log)
	leadHandlers := handlers.NewLeadHandlers(followUpSvc, leadSvc, log)
	clientHandlers := handlers.NewClientHandlers(clientSvc, log)
	settingsHandlers := handlers.NewSettingsHandlers(settingsSvc, log)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc, log)
	proposalHandlers := handlers.NewProposalHandlers(proposalSvc, log)

	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimitStore(cfg.RateLimit, cacheSvc), cfg.RateLimit, metrics, log)

	e := echo.New()
	e.HideBanner = true
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Ops endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.Use(echojwt.WithConfig(middleware.JWTConfig(cfg.Server.JWTSecret)))
	v1.Use(middleware.RequireTenant())
	v1.Use(rateLimiter.Middleware())

	v1.POST("/finance/reminders", reminderHandlers.TriggerReminders)
	v1.PATCH("/finance/templates", settingsHandlers.UpdateTemplates)

	v1.GET("/automation/alerts", automationHandlers.ListAlerts)
	v1.POST("/automation/generate-message", automationHandlers.GenerateMessage)

	v1.GET("/leads", leadHandlers.ListLeads)
	v1.POST("/leads", leadHandlers.CreateLead)
	v1.PATCH("/leads/:id/status", leadHandlers.UpdateStatus)
	v1.POST("/leads/:id/follow-up", leadHandlers.FollowUp)
	v1.GET("/leads/:id/score", leadHandlers.Score)

	v1.GET("/settings/workspace", settingsHandlers.GetWorkspace)
	v1.PATCH("/settings/workspace", settingsHandlers.UpdateWorkspace)

	v1.GET("/clients", clientHandlers.ListClients)
	v1.POST("/clients", clientHandlers.CreateClient)

	v1.GET("/invoices", invoiceHandlers.ListInvoices)
	v1.POST("/invoices", invoiceHandlers.CreateInvoice)
	v1.PATCH("/invoices/:id/status", invoiceHandlers.UpdateStatus)

	v1.POST("/proposals/:id/pdf", proposalHandlers.GeneratePDF)
	v1.POST("/proposals/:id/send", proposalHandlers.Send)

	var scheduler *background.JobScheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = background.NewJobScheduler(cfg.Scheduler, loc, tenantRepo, reminderJob, invoiceSvc, alertSvc, log)
		if err != nil {
			log.Fatal("failed to create job scheduler", zap.Error(err))
		}
		scheduler.Start()

		if cfg.Server.AdminToken != "" {
			jobHandlers := handlers.NewJobHandlers(scheduler, log)
			ops := e.Group("/ops", middleware.AdminKeyAuth(cfg.Server.AdminToken))
			ops.GET("/jobs", jobHandlers.ListJobs)
			ops.POST("/jobs/:name/run", jobHandlers.RunJob)
		} else {
			log.Info("ADMIN_TOKEN not set, /ops job routes disabled")
		}
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info("server starting",
			zap.String("version", version),
			zap.String("addr", addr),
			zap.String("timezone", loc.String()),
			zap.Bool("scheduler", cfg.Scheduler.Enabled),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.Error("failed to stop scheduler", zap.Error(err))
		}
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down server", zap.Error(err))
	}
}

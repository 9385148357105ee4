package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sva/internal/config"
	"sva/internal/domain"
	"sva/internal/email/noop"
	"sva/internal/email/ses"
	"sva/internal/extractor"
	"sva/internal/extractor/providers"
	"sva/internal/handler"
	"sva/internal/port"
	"sva/internal/reconcile"
	"sva/internal/render"
	"sva/internal/repository/postgres"
	"sva/internal/router"
	"sva/internal/segment"
	"sva/internal/service"
	s3storage "sva/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	extractionRepo := postgres.NewExtractionRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	orderItemRepo := postgres.NewOrderItemRepo(db)
	txManager := postgres.NewTxManager(db)

	// Initialize extraction pipeline
	providers.Register()
	remote, err := extractor.NewFromConfig(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize remote extractor: %w", err)
	}
	if p := cfg.Extractor.PrimaryConfig(); p != nil {
		log.Printf("Remote extraction via %s", p.Provider)
	} else {
		log.Printf("No remote extraction provider configured, only local mode is available")
	}
	selector := extractor.NewSelector(segment.NewEngine(), remote)
	renderer := render.NewRenderer(cfg.Extractor.MaxPages)
	reconciler := reconcile.NewEngine(txManager)

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		log.Printf("SVA_S3_BUCKET not set, original documents will not be archived")
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	defaultClass, ok := domain.ParseProductClass(cfg.Reconcile.DefaultProductClass)
	if !ok {
		return fmt.Errorf("unknown reconcile.default_product_class %q", cfg.Reconcile.DefaultProductClass)
	}

	// Initialize services
	extractionSvc := service.NewExtractionService(
		extractionRepo, renderer, selector, reconciler, storage, emailSender,
		service.ExtractionSettings{
			DefaultMode:     domain.ExtractionMode(cfg.Extractor.DefaultMode),
			MaxPayloadBytes: cfg.Extractor.MaxPayloadBytes,
			Bucket:          cfg.S3.Bucket,
			PresignExpiry:   cfg.S3.PresignExpiry,
			ReportEmail:     cfg.Email.ReportEmail,
			Reconcile: reconcile.Options{
				HospitalUnit:   cfg.Hospital.Unit,
				FuzzyThreshold: cfg.Reconcile.FuzzyThreshold,
				DefaultClass:   defaultClass,
				CandidateLimit: cfg.Reconcile.CandidateLimit,
			},
		},
	)
	orderSvc := service.NewOrderService(orderRepo, orderItemRepo, txManager)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	parseH := handler.NewParseReportHandler(extractionSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, extractionH, parseH, orderH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}

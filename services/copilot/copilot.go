// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package copilot wires the decision-copilot service together.
//
// This package contains the Service type that coordinates all components:
// HTTP routing, the entity store, the retention sweeper, the mitigation
// planner with its optional LLM delegate, the provenance journal, and
// observability infrastructure.
//
// # Usage
//
//	cfg := copilot.Config{Port: 12310, DBPath: "copilot.db"}
//	svc, err := copilot.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package copilot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/DecisionCopilot/services/copilot/journal"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/observability"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/planner"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/retention"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/routes"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage"
	"github.com/AleutianAI/DecisionCopilot/services/copilot/storage/sqlite"
	"github.com/AleutianAI/DecisionCopilot/services/llm"
)

// Version is the service version reported by /health.
const Version = "0.1.0"

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the copilot service.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and
// should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	Router() *gin.Engine

	// Close releases the store, journal, tracer, and guarded memory.
	Close() error
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds copilot service configuration.
//
// All fields are optional; New applies defaults for zero values.
type Config struct {
	// Host is the HTTP listen address. Default: "0.0.0.0"
	Host string

	// Port is the HTTP server port. Default: 12310
	Port int

	// DBPath is the SQLite database path. Default: "copilot.db"
	DBPath string

	// JournalPath is the BadgerDB provenance journal directory.
	// Default: "copilot-journal"
	JournalPath string

	// LLMBackend selects the mitigation-generation provider.
	// Valid values: "openai", "claude", "anthropic", "ollama".
	// Empty or unknown means no provider: every plan takes the
	// deterministic path.
	LLMBackend string

	// ProviderTimeout bounds a single provider call. Default: 20s.
	ProviderTimeout time.Duration

	// OTelEndpoint is the OpenTelemetry collector endpoint. Empty
	// disables trace export (tracing becomes a no-op).
	OTelEndpoint string

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Empty uses the GIN_MODE env var or Gin's default.
	GinMode string
}

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "copilot.db"
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = "copilot-journal"
	}
	if cfg.ProviderTimeout == 0 {
		cfg.ProviderTimeout = 20 * time.Second
	}
	return cfg
}

// Options carries test doubles for components New would otherwise
// construct. Nil fields use the production implementation.
type Options struct {
	// Store replaces the SQLite store.
	Store storage.Store

	// Clock replaces the guarded clock.
	Clock retention.ClockChecker

	// Generator replaces the delegated (provider) generator. The
	// deterministic fallback is always constructed internally.
	Generator planner.ActionGenerator

	// Journal replaces the BadgerDB journal.
	Journal journal.Journal
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
type service struct {
	config        Config
	router        *gin.Engine
	store         storage.Store
	jrnl          journal.Journal
	sweeper       *retention.Sweeper
	planner       *planner.Planner
	tracerCleanup func(context.Context)
}

var _ Service = (*service)(nil)

// =============================================================================
// Constructor
// =============================================================================

// New creates a copilot Service with the given configuration.
//
// # Description
//
// New initializes all components in dependency order:
//  1. Applies default configuration for missing values.
//  2. Initializes Prometheus metrics.
//  3. Initializes OpenTelemetry tracing when an endpoint is configured.
//  4. Opens the SQLite store and the BadgerDB provenance journal.
//  5. Creates the LLM client for the configured backend; a missing
//     credential is not fatal, it routes plans to the deterministic path.
//  6. Runs the startup retention sweep.
//  7. Wires the planner and HTTP routes.
//
// # Inputs
//
//   - cfg: Service configuration. Zero values use defaults.
//   - opts: Test doubles for internal components. May be nil.
//
// # Outputs
//
//   - Service: Ready-to-run copilot service.
//   - error: Non-nil if initialization fails.
func New(cfg Config, opts *Options) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}
	if opts == nil {
		opts = &Options{}
	}

	observability.InitMetrics()

	if s.config.OTelEndpoint != "" {
		cleanup, err := initTracer(s.config.OTelEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	if opts.Store != nil {
		s.store = opts.Store
	} else {
		store, err := sqlite.New(s.config.DBPath)
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to open entity store: %w", err)
		}
		s.store = store
	}

	if opts.Journal != nil {
		s.jrnl = opts.Journal
	} else {
		jrnl, err := journal.New(journal.Config{Path: s.config.JournalPath, Logger: slog.Default()})
		if err != nil {
			s.cleanup()
			return nil, fmt.Errorf("failed to open provenance journal: %w", err)
		}
		s.jrnl = jrnl
	}

	clock := opts.Clock
	if clock == nil {
		clock = retention.NewClockChecker()
	}
	s.sweeper = retention.NewSweeper(s.store, clock)

	// Startup sweep: a long-idle deployment purges expired concerns
	// before serving any request.
	if deleted, err := s.sweeper.SweepNow(context.Background()); err != nil {
		slog.Warn("Startup retention sweep failed", "error", err)
	} else if deleted > 0 {
		slog.Info("Startup retention sweep complete", "deleted", deleted)
	}

	delegated := opts.Generator
	if delegated == nil {
		delegated = s.initDelegatedGenerator()
	}
	s.planner = planner.NewPlanner(s.store, s.sweeper, clock, delegated, s.jrnl)

	s.initRouter()
	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	slog.Info("Starting copilot server", "addr", addr)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// Close releases all resources held by the service.
func (s *service) Close() error {
	s.cleanup()
	return nil
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// initDelegatedGenerator creates the provider-backed generator, or nil
// when no backend is configured or its credential is absent.
func (s *service) initDelegatedGenerator() planner.ActionGenerator {
	client, err := llm.NewClient(s.config.LLMBackend)
	if err != nil {
		if s.config.LLMBackend != "" {
			slog.Warn("LLM backend unavailable, plans use the deterministic path",
				"backend", s.config.LLMBackend, "error", err)
		} else {
			slog.Info("No LLM backend configured, plans use the deterministic path")
		}
		return nil
	}
	slog.Info("Using delegated plan generation", "backend", s.config.LLMBackend, "model", client.Model())
	return planner.NewDelegatedGenerator(client, s.config.ProviderTimeout)
}

// initRouter sets up the Gin engine with middleware and routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("copilot-service"))

	routes.SetupRoutes(router, s.store, s.planner, s.jrnl, Version)
	s.router = router
}

// initTracer initializes OpenTelemetry distributed tracing against an
// OTLP gRPC collector.
func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("copilot-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}
	return cleanup, nil
}

// cleanup releases resources in reverse initialization order. Safe to
// call with partially initialized state and more than once.
func (s *service) cleanup() {
	if s.jrnl != nil {
		if err := s.jrnl.Close(); err != nil {
			slog.Error("failed to close provenance journal", "error", err)
		}
		s.jrnl = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Error("failed to close entity store", "error", err)
		}
		s.store = nil
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
		s.tracerCleanup = nil
	}
	llm.PurgeCredentials()
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pazuzu-registry/internal/bootstrap"
	"pazuzu-registry/internal/config"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/server"
	"pazuzu-registry/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing, sysLogger)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			sysLogger.Error("TRACER", "Tracer shutdown error", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 3. Initialize Feature Store
	uowFactory, err := bootstrap.NewRepositoryFactory(cfg)
	if err != nil {
		log.Panicf("Unable to initialize feature store: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(uowFactory, cfg, sysLogger)
	defer container.Close()

	// 5. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sysLogger.Info("MAIN", "Starting consumer service", nil)
	if err := container.Start(ctx); err != nil {
		log.Panicf("Background Consumer Error: %v", err)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		sysLogger.Info("MAIN", "Shutting down server", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("MAIN", "Server shutdown error", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 7. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}

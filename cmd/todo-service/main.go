package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fathima-sithara/todo-service/internal/bootstrap"
)

func main() {
	appCtx, cleanup, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	sugar := appCtx.Sugar
	cfg := appCtx.Config

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := appCtx.App.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancelShut()

	if err := appCtx.App.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	sugar.Info("Graceful shutdown complete. Goodbye!")
	cleanup(ctxShut)
}

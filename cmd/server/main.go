package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Desoltijfl/checador-demo/internal/auth"
	"github.com/Desoltijfl/checador-demo/internal/config"
	checadorgrpc "github.com/Desoltijfl/checador-demo/internal/grpc"
	internalhttp "github.com/Desoltijfl/checador-demo/internal/http"
	"github.com/Desoltijfl/checador-demo/internal/logging"
	"github.com/Desoltijfl/checador-demo/internal/metrics"
	"github.com/Desoltijfl/checador-demo/internal/repository"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := repository.NewUserStore(cfg.BcryptCost)
	events := repository.NewEventStore(repository.WithUserLookup(users))
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	server := internalhttp.NewServer(cfg, users, events, tokens, logger, metrics.New())
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr, "seed", cfg.SeedEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcServer *checadorgrpc.Server
	if cfg.GRPCAddr != "" {
		listener, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		grpcServer = checadorgrpc.NewServer(logger)
		go func() {
			logger.Info("grpc health listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.GRPC().Serve(listener); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
		return err
	}
	return nil
}

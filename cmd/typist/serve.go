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

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typist/internal/config"
	"github.com/verte-zerg/typist/internal/web"
)

const (
	defaultAddr      = ":8080"
	defaultEnvFile   = ".env"
	sweepInterval    = time.Hour
	shutdownDeadline = 5 * time.Second
)

var (
	serveAddr       string
	serveEnvFile    string
	serveSessionTTL time.Duration
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trainer over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveEnvFile, "env-file", defaultEnvFile, "dotenv file with PORT, TYPIST_ADDR, TYPIST_DB")
	cmd.Flags().DurationVar(&serveSessionTTL, "session-ttl", web.DefaultSessionTTL, "idle player session lifetime")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Web.Addr)
	if fileCfg.Web.SessionTTL != nil && !cmd.Flags().Changed("session-ttl") {
		serveSessionTTL = fileCfg.Web.SessionTTL.Duration
	}

	env, err := config.LoadServerEnv(serveEnvFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", serveEnvFile, err)
	}
	if env.Addr != "" && !cmd.Flags().Changed("addr") {
		serveAddr = env.Addr
	}
	if env.DBPath != "" && !cmd.Flags().Changed("db") {
		dbPath = env.DBPath
	}

	level := logLevel
	if !cmd.Flags().Changed("log-level") {
		level = "info"
	}
	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	a, err := openApp(fileCfg, dbPath, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := web.New(web.Options{
		Practice:   a.cfg,
		Story:      a.engine,
		Scores:     a.scores,
		Logger:     logger,
		SessionTTL: serveSessionTTL,
	})
	// Hijacked sockets outlive Shutdown; drop them before the store closes.
	defer srv.Close()
	httpServer := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.Players().RunSweeper(ctx, sweepInterval, func(n int) {
		logger.InfoContext(ctx, "swept idle player sessions", "count", n)
	})

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "listening", "addr", serveAddr, "db", dbPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

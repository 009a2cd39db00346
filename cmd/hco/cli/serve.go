package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/humanityclub/hco-backend/internal/api"
	"github.com/humanityclub/hco-backend/internal/api/handler"
	"github.com/humanityclub/hco-backend/internal/core/ports"
	"github.com/humanityclub/hco-backend/internal/infrastructure/db/redis"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return cmd
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	checks := []handler.DependencyCheck{{Name: "mongodb", Ping: a.store.Ping}}

	// Without Redis the login throttle is disabled rather than blocking logins.
	var throttle ports.LoginThrottle
	rdb, err := redis.Open(ctx, redis.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
	} else {
		defer rdb.Close()
		throttle = redis.NewLoginThrottle(rdb, a.cfg.Throttle.MaxAttempts, a.cfg.Throttle.Window)
		checks = append(checks, handler.DependencyCheck{Name: "redis", Ping: redis.Pinger(rdb)})
	}

	e := api.NewRouter(api.Options{
		AuthService:  a.authService(throttle),
		Logger:       a.log,
		Production:   a.cfg.IsProduction(),
		CORSOrigins:  a.cfg.HTTP.CORSOrigins,
		CookieDomain: a.cfg.HTTP.CookieDomain,
		BodyLimit:    a.cfg.HTTP.BodyLimit,
		Version:      appVersion,
		Checks:       checks,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Env).Msg("http server starting")
		errCh <- e.Start(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/humanityclub/hco-backend/internal/core/ports"
	"github.com/humanityclub/hco-backend/internal/core/service"
	"github.com/humanityclub/hco-backend/internal/infrastructure/config"
	"github.com/humanityclub/hco-backend/internal/infrastructure/db/mongo"
	"github.com/humanityclub/hco-backend/pkg/logger"
)

// app holds what every command needs: validated configuration, the logger
// and the admin store.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *mongo.Store
	repo   *mongo.AdminRepository
	tokens *service.TokenManager
}

// openApp loads configuration and connects to MongoDB. Configuration errors
// are returned before anything is dialled.
func openApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		Output: logOut,
	})

	tokens, err := service.NewTokenManager(service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	repo := store.Admins()
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("ensure admin indexes: %w", err)
	}

	return &app{cfg: cfg, log: log, store: store, repo: repo, tokens: tokens}, nil
}

func (a *app) authService(throttle ports.LoginThrottle) *service.AuthService {
	return service.NewAuthService(a.repo, a.tokens, service.AuthOptions{
		BcryptCost:       a.cfg.Auth.BcryptCost,
		OpenRegistration: a.cfg.Auth.OpenRegistration,
		Throttle:         throttle,
		Logger:           a.log,
	})
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Close(ctx); err != nil {
		a.log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}

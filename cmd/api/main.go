// @title                       Account Service API
// @version                     1.0
// @description                 Registration, login, password management and bearer-token authentication for storefront accounts.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/storefront/account-service/internal/api"
	"github.com/storefront/account-service/internal/api/handler"
	"github.com/storefront/account-service/internal/core/ports"
	"github.com/storefront/account-service/internal/core/service"
	"github.com/storefront/account-service/internal/infrastructure/crypto"
	"github.com/storefront/account-service/internal/infrastructure/db/mongo"
	"github.com/storefront/account-service/internal/infrastructure/db/postgres"
	"github.com/storefront/account-service/internal/infrastructure/db/redis"
	"github.com/storefront/account-service/internal/pkg/config"
	"github.com/storefront/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "account-service",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not load .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("account service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	health := make(map[string]handler.Pinger)

	repo, closeStore, err := openStore(ctx, cfg, log, health)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher := crypto.NewBcryptHasher(cfg.JWT.BcryptCost)
	tokens, err := crypto.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn.Duration(), cfg.JWT.Issuer)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	log.Info().Dur("token_ttl", tokens.TTL()).Str("issuer", cfg.JWT.Issuer).Msg("token issuer ready")

	var opts []service.Option
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		} else {
			defer rdb.Close()
			opts = append(opts, service.WithLoginLimiter(redis.NewLoginLimiter(rdb, cfg.Login.Window, cfg.Login.MaxAttempts)))
			health["redis"] = handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			})
			log.Info().Str("addr", cfg.Redis.Addr).Int("max_attempts", cfg.Login.MaxAttempts).Dur("window", cfg.Login.Window).Msg("login throttling enabled")
		}
	}

	auth := service.NewAuthService(repo, hasher, tokens, log, opts...)
	accounts := service.NewAccountService(repo, hasher, log)

	if cfg.Admin.Email != "" {
		if _, err := accounts.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	e := api.NewRouter(api.Deps{
		Auth:     auth,
		Accounts: accounts,
		Health:   health,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured credential store and registers its
// readiness probe.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, health map[string]handler.Pinger) (ports.AccountRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeStore := func() { _ = store.Close(context.Background()) }
		repo, err := store.Accounts(ctx)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		health["mongodb"] = repo
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongodb credential store")
		return repo, closeStore, nil

	default:
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(cfg.Postgres.URL, log); err != nil {
				return nil, nil, err
			}
		}
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewAccountRepository(pool)
		health["postgres"] = repo
		log.Info().Msg("using postgres credential store")
		return repo, pool.Close, nil
	}
}

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

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-desk/internal/classifier"
	"ticket-desk/internal/repositories"
	"ticket-desk/internal/routes"
	"ticket-desk/pkg/config"
	"ticket-desk/pkg/customvalidator"
	"ticket-desk/pkg/database/postgresql"
	apperrors "ticket-desk/pkg/errors"
	applogger "ticket-desk/pkg/logger"
	"ticket-desk/pkg/metrics"
	appmiddleware "ticket-desk/pkg/middleware"
	"ticket-desk/pkg/service"
	"ticket-desk/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.New()
	logger, err := applogger.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger.Named("postgres"))
	if err != nil {
		logger.Error("could not connect to database", zap.Error(err))
		return err
	}
	defer dbConn.Close()

	if cfg.Server.MigrateOnStart {
		// The server still starts on failure; queries touching missing
		// columns fail on their own.
		if err := migrateUp(ctx, dbConn, logger); err != nil {
			logger.Error("startup migration failed, continuing", zap.Error(err))
		}
	}

	cacheRepo, closeCache := newCacheRepository(ctx, cfg.Redis, logger)
	defer closeCache()

	clf := classifier.Load(cfg.Classifier.ModelDir, logger.Named("classifier"))
	if clf.Mode() == classifier.ModeModel {
		metrics.ClassifierModelLoaded.Set(1)
	}

	jwtSvc, err := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTokenTTL, logger.Named("jwt"))
	if err != nil {
		logger.Error("invalid token configuration", zap.Error(err))
		return err
	}

	e, err := newEcho(cfg, logger)
	if err != nil {
		logger.Error("could not set up validator", zap.Error(err))
		return err
	}
	loggers := routes.NewLoggers(logger)
	repos := routes.NewRepositories(dbConn, cacheRepo, logger)
	routes.InitRouter(e, repos, clf, jwtSvc, loggers, cfg)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("port", cfg.Server.Port), zap.String("classifier", clf.Mode()))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho(cfg *config.Config, logger *zap.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = routes.ErrorHandler(logger.Named("http"))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			return apperrors.NewHttpError(http.StatusInternalServerError, "internal server error", err, nil)
		},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		return nil, err
	}
	e.Validator = utils.NewValidator(v)
	return e, nil
}

// newCacheRepository connects to Redis when an address is configured. Without
// one, or when Redis is unreachable, stats caching and login lockout are off.
func newCacheRepository(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (repositories.CacheRepositoryInterface, func()) {
	if cfg.Address == "" {
		logger.Info("REDIS_ADDRESS not set, caching disabled")
		return repositories.NewNoopCacheRepository(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("could not reach Redis, caching disabled", zap.String("address", cfg.Address), zap.Error(err))
		_ = client.Close()
		return repositories.NewNoopCacheRepository(), func() {}
	}
	return repositories.NewRedisCacheRepository(client), func() { _ = client.Close() }
}

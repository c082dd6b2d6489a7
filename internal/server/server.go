package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/splitmyexpenses/backend/internal/auth"
	"example.com/splitmyexpenses/backend/internal/classify"
	"example.com/splitmyexpenses/backend/internal/config"
	"example.com/splitmyexpenses/backend/internal/handlers"
	"example.com/splitmyexpenses/backend/internal/mailer"
	"example.com/splitmyexpenses/backend/internal/notifications"
	"example.com/splitmyexpenses/backend/internal/oauth"
	"example.com/splitmyexpenses/backend/internal/repository"
	"example.com/splitmyexpenses/backend/internal/summary"
)

// New assembles the Echo HTTP server with routes and dependencies.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, cfg.Auth.VerifyTokenTTL)

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	splitRepo := repository.NewSplitRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)

	notificationHub := notifications.NewHub()

	ollama := classify.NewOllamaClient(cfg.Classifier.BaseURL, cfg.Classifier.Model,
		cfg.Classifier.Timeout, cfg.Classifier.Temperature, cfg.Classifier.TopP)
	classifier := classify.NewService(ollama, logger)
	summarizer := summary.NewSummarizer(expenseRepo, groupRepo, logger)

	googleProvider := oauth.NewGoogleProvider(cfg.OAuth)

	// Without an SMTP host the verification mail is skipped entirely.
	var sender mailer.Sender
	if cfg.Mail.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.Mail)
	}

	authHandler := handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager,
		sender, googleProvider, cfg.Mail.VerifyURLBase, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	groupHandler := handlers.NewGroupHandler(groupRepo, notificationHub)
	expenseHandler := handlers.NewExpenseHandler(expenseRepo, groupRepo, categoryRepo,
		classifier, summarizer, notificationHub)
	splitHandler := handlers.NewSplitHandler(expenseRepo, groupRepo, splitRepo)
	receiptHandler := handlers.NewReceiptHandler(expenseRepo, receiptRepo, cfg.Uploads.Dir)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		authHandler,
		categoryHandler,
		groupHandler,
		expenseHandler,
		splitHandler,
		receiptHandler,
		notificationHandler,
		auth.JWTMiddleware(tokenManager),
		rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		rateLimiter(cfg.Classifier.RateLimitPerMinute, cfg.Classifier.RateLimitBurst),
	)

	return e
}

// NewHTTPServer creates a net/http server with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

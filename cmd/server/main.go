package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/config"
	"github.com/Skotchmaster/apparel_shop/internal/httpserver"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/payment"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/search"
	"github.com/Skotchmaster/apparel_shop/internal/service"
	pkgdb "github.com/Skotchmaster/apparel_shop/pkg/db"
	"github.com/Skotchmaster/apparel_shop/pkg/events"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
	authmw "github.com/Skotchmaster/apparel_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/apparel_shop/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/apparel_shop/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL, models.All()...)
	cancel()
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}

	publisher := newPublisher(cfg, logger)
	r := repo.New(db)

	catalog := &service.CatalogService{Repo: r, Events: publisher}
	if idx := newSearchIndex(cfg, logger); idx != nil {
		catalog.Index = idx
	}
	coupons := &service.CouponService{Repo: r}

	checkout := &service.CheckoutService{
		Repo:          r,
		Catalog:       catalog,
		Coupons:       coupons,
		Events:        publisher,
		Currency:      cfg.Currency,
		PublicBaseURL: cfg.PublicBaseURL,
	}
	if cfg.StripeEnabled() {
		checkout.Stripe = payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		logger.Warn("stripe_disabled", "reason", "STRIPE_SECRET_KEY is empty")
	}
	if cfg.PayPalEnabled() {
		pp, err := payment.NewPayPalClient(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalMode)
		if err != nil {
			logger.Error("paypal_init_failed", "error", err)
			os.Exit(1)
		}
		checkout.PayPal = pp
	} else {
		logger.Warn("paypal_disabled", "reason", "PAYPAL_CLIENT_ID or PAYPAL_SECRET is empty")
	}

	orders := &service.OrderService{Repo: r, Checkout: checkout, Events: publisher}

	e := echo.New()
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("8M"))

	deps := &httpserver.Deps{
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: catalog},
		CouponHandler:   &httpserver.CouponHTTP{Svc: coupons},
		CheckoutHandler: &httpserver.CheckoutHTTP{Svc: checkout},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orders},
		Admin:           authmw.NewAdminMiddleware(cfg.JWTAccessSecret, authmw.EmailPolicy(cfg.AdminEmails)),
		Ready:           pingDB(db),
	}
	if cfg.AdminCSRF {
		deps.AdminCSRF = csrf.Middleware(csrf.Config{
			Secure: strings.HasPrefix(cfg.PublicBaseURL, "https://"),
		})
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("event_publisher_close_failed", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}

func newPublisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
		return events.Nop{}
	}
	p, err := events.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.Error("kafka_init_failed", "error", err)
		os.Exit(1)
	}
	return p
}

// newSearchIndex returns nil when search is off or the cluster is unreachable;
// the catalog then answers search requests with 503.
func newSearchIndex(cfg config.Config, logger *slog.Logger) *search.Index {
	if cfg.ESURL == "" {
		logger.Warn("search_disabled", "reason", "ES_URL is empty")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	idx, err := search.NewIndex(ctx, search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		logger.Warn("search_unavailable", "error", err)
		return nil
	}
	return idx
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/apparel_shop/pkg/config"
)

type Config struct {
	pkgconfig.Config

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	StripeSecretKey     string
	StripeWebhookSecret string

	PayPalClientID string
	PayPalSecret   string
	PayPalMode     string

	PublicBaseURL string
	Currency      string
	AdminEmails   []string
	AdminCSRF     bool
}

func (c Config) StripeEnabled() bool {
	return c.StripeSecretKey != ""
}

func (c Config) PayPalEnabled() bool {
	return c.PayPalClientID != "" && c.PayPalSecret != ""
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv_load_failed", "error", err)
	}

	cfg := Config{
		Config: pkgconfig.Load(),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "products"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		PayPalClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:   os.Getenv("PAYPAL_SECRET"),
		PayPalMode:     pkgconfig.EnvDefault("PAYPAL_MODE", "sandbox"),

		PublicBaseURL: strings.TrimRight(pkgconfig.EnvDefault("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		Currency:      strings.ToLower(pkgconfig.EnvDefault("CURRENCY", "usd")),
		AdminEmails:   pkgconfig.CSV(os.Getenv("ADMIN_EMAILS")),
		AdminCSRF:     pkgconfig.EnvBoolDefault("ADMIN_CSRF", true),
	}

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgconfig.MustOneOf(cfg.PayPalMode, "PAYPAL_MODE", "sandbox", "live")

	return cfg
}

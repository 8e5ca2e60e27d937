// Package config loads service settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type OrderLogDriver string

const (
	DriverFile     OrderLogDriver = "file"
	DriverSQLite   OrderLogDriver = "sqlite"
	DriverPostgres OrderLogDriver = "postgres"
)

type Config struct {
	Port           string
	PublicBaseURL  string
	RequestTimeout time.Duration
	// UpstreamTimeout bounds calls to WooCommerce and EmailJS.
	UpstreamTimeout time.Duration
	LogLevel        string

	StripeSecretKey   string
	Currency          string
	ShippingCountries []string

	WooCommerceURL    string
	WooCommerceKey    string
	WooCommerceSecret string

	EmailJSPublicKey  string
	EmailJSPrivateKey string
	EmailJSServiceID  string
	EmailJSTemplateID string

	// RedisAddr empty keeps carts in process memory.
	RedisAddr string
	CartTTL   time.Duration

	OrderLogDriver OrderLogDriver
	OrderLogPath   string
	OrderLogDSN    string

	OTelEndpoint    string
	OTelServiceName string
	Environment     string
}

// Load reads .env from the working directory when present, then the
// process environment. Variables already set are not overridden.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	driver := OrderLogDriver(strings.ToLower(getenv("ORDER_LOG_DRIVER", string(DriverFile))))
	switch driver {
	case DriverFile, DriverSQLite, DriverPostgres:
	default:
		driver = DriverFile
	}

	defaultPath := "data/orders.json"
	if driver == DriverSQLite {
		defaultPath = "data/orders.db"
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		RequestTimeout:  parseDuration(getenv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),
		LogLevel:        getenv("LOG_LEVEL", "info"),

		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		Currency:          strings.ToLower(getenv("CHECKOUT_CURRENCY", "usd")),
		ShippingCountries: splitCSV(getenv("SHIPPING_COUNTRIES", "US,CA,GB,AU")),

		WooCommerceURL:    os.Getenv("WOOCOMMERCE_API_URL"),
		WooCommerceKey:    os.Getenv("WOOCOMMERCE_CONSUMER_KEY"),
		WooCommerceSecret: os.Getenv("WOOCOMMERCE_CONSUMER_SECRET"),

		EmailJSPublicKey:  os.Getenv("EMAILJS_PUBLIC_KEY"),
		EmailJSPrivateKey: os.Getenv("EMAILJS_PRIVATE_KEY"),
		EmailJSServiceID:  os.Getenv("EMAILJS_SERVICE_ID"),
		EmailJSTemplateID: os.Getenv("EMAILJS_ORDER_TEMPLATE_ID"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CartTTL:   parseDuration(getenv("CART_TTL", "720h"), 720*time.Hour),

		OrderLogDriver: driver,
		OrderLogPath:   getenv("ORDER_LOG_PATH", defaultPath),
		OrderLogDSN:    os.Getenv("ORDER_LOG_DSN"),

		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName: getenv("OTEL_SERVICE_NAME", "storefront"),
		Environment:     getenv("APP_ENV", "local"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

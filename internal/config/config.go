package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service settings.
type Config struct {
	Port        int
	Marketplace Marketplace
	DB          DB
	Kafka       Kafka
	Location    Location
	Tracking    Tracking
	RateLimit   RateLimit
	Pprof       Pprof
}

// Marketplace stores marketplace backend settings.
type Marketplace struct {
	BaseURL string
	Token   string
	Gateway GatewaySettings
}

// GatewaySettings describes retry behaviour of the marketplace gateway.
type GatewaySettings struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DB stores database connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores assignment-events consumer settings.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Location stores the static fallback position reported when a courier
// request carries no explicit coordinates.
type Location struct {
	Lat float64
	Lng float64
}

// Tracking stores tracker usecase settings.
type Tracking struct {
	OperationTimeout  time.Duration
	ReconcileInterval time.Duration
}

// RateLimit stores per-client HTTP rate limiting settings.
type RateLimit struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	MaxKeys int
}

// Pprof stores the pprof side server settings.
type Pprof struct {
	Addr string
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:        DefaultPort(),
		Marketplace: DefaultMarketplace(),
		DB:          DefaultDB(),
		Kafka:       DefaultKafka(),
		Location:    DefaultLocation(),
		Tracking:    DefaultTracking(),
		RateLimit:   DefaultRateLimit(),
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = p
	}

	if err := loadMarketplace(&cfg.Marketplace); err != nil {
		return nil, err
	}
	loadDB(&cfg.DB)
	loadKafka(&cfg.Kafka)
	if err := loadLocation(&cfg.Location); err != nil {
		return nil, err
	}
	if v := os.Getenv("TRACKING_OPERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACKING_OPERATION_TIMEOUT: %q", v)
		}
		cfg.Tracking.OperationTimeout = d
	}
	if v := os.Getenv("TRACKING_RECONCILE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACKING_RECONCILE_INTERVAL: %q", v)
		}
		cfg.Tracking.ReconcileInterval = d
	}
	if err := loadRateLimit(&cfg.RateLimit); err != nil {
		return nil, err
	}
	cfg.Pprof = Pprof{
		Addr: os.Getenv("PPROF_ADDR"),
		User: os.Getenv("PPROF_USER"),
		Pass: os.Getenv("PPROF_PASS"),
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadMarketplace(m *Marketplace) error {
	if v := os.Getenv("MARKETPLACE_BASE_URL"); v != "" {
		m.BaseURL = v
	}
	if v := os.Getenv("MARKETPLACE_TOKEN"); v != "" {
		m.Token = v
	}
	if v := os.Getenv("GATEWAY_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid GATEWAY_MAX_ATTEMPTS: %q", v)
		}
		m.Gateway.MaxAttempts = n
	}
	if v := os.Getenv("GATEWAY_BASE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GATEWAY_BASE_DELAY: %q", v)
		}
		m.Gateway.BaseDelay = d
	}
	if v := os.Getenv("GATEWAY_MAX_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GATEWAY_MAX_DELAY: %q", v)
		}
		m.Gateway.MaxDelay = d
	}
	return nil
}

func loadDB(db *DB) {
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		db.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		db.Port = v
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		db.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		db.Pass = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		db.Name = v
	}
}

func loadKafka(k *Kafka) {
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		k.Brokers = brokers
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		k.Topic = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		k.GroupID = v
	}
}

func loadLocation(l *Location) error {
	if v := os.Getenv("STATIC_LOCATION_LAT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid STATIC_LOCATION_LAT: %q", v)
		}
		l.Lat = f
	}
	if v := os.Getenv("STATIC_LOCATION_LNG"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid STATIC_LOCATION_LNG: %q", v)
		}
		l.Lng = f
	}
	return nil
}

func loadRateLimit(rl *RateLimit) error {
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_ENABLED: %q", v)
		}
		rl.Enabled = b
	}
	if v := os.Getenv("RATE_LIMIT_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid RATE_LIMIT_LIMIT: %q", v)
		}
		rl.Limit = n
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_WINDOW: %q", v)
		}
		rl.Window = d
	}
	if v := os.Getenv("RATE_LIMIT_MAX_KEYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_MAX_KEYS: %q", v)
		}
		rl.MaxKeys = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := strconv.Atoi(c.DB.Port); err != nil {
		return fmt.Errorf("invalid postgres port: %q", c.DB.Port)
	}
	if c.Marketplace.BaseURL == "" {
		return fmt.Errorf("marketplace base url is empty")
	}
	if c.Tracking.OperationTimeout <= 0 {
		return fmt.Errorf("invalid tracking operation timeout: %s", c.Tracking.OperationTimeout)
	}
	if c.Tracking.ReconcileInterval <= 0 {
		return fmt.Errorf("invalid tracking reconcile interval: %s", c.Tracking.ReconcileInterval)
	}
	return nil
}

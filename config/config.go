package config

import (
	"log"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is built once in main and passed by value into each component's constructor.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	STORAGE_DRIVER=postgres
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=spimex
//	INGEST_LISTING_URL=https://spimex.com/markets/oil_products/trades/results/
//	INGEST_CONCURRENCY=5
//	REDIS_URL=redis://localhost:6379/0
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Storage   StorageConfig   // Which database backs the trade results table
	Postgres  PostgresConfig  // PostgreSQL connection settings
	Ingestion IngestionConfig // Bulletin discovery and download settings
	Redis     RedisConfig     // Optional API response cache
	Log       LogConfig       // Logger level and format
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// StorageConfig selects the SQL backend.
//
// Fields:
//   - Driver: "postgres" (default) or "sqlite".
//   - SQLitePath: database file used when Driver is "sqlite".
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: full connection URL (POSTGRES_URL); when set it overrides the fields above.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// IngestionConfig drives the bulletin pipeline.
//
// Fields:
//   - ListingURL: paginated listing endpoint, requested as ListingURL?page=N.
//   - LinkSelector: CSS selector of bulletin anchors on a listing page.
//   - TitleMarker: substring of the anchor text that marks the bulletin type of interest.
//   - ReportsDir: directory for temporary and finalized bulletin files.
//   - Concurrency: maximum number of in-flight download sequences.
//   - StartDate: first month covered; the default link limit is the month count since then.
//   - TimingFile: sidecar file receiving the run's wall-clock duration.
//   - HTTPTimeout: per-request timeout for listing and download requests.
//   - UserAgent: User-Agent header sent with every request.
type IngestionConfig struct {
	ListingURL   string
	LinkSelector string
	TitleMarker  string
	ReportsDir   string
	Concurrency  int
	StartDate    time.Time
	TimingFile   string
	HTTPTimeout  time.Duration
	UserAgent    string
}

// RedisConfig configures the API cache. An empty URL disables caching.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// LogConfig configures the global zerolog logger.
type LogConfig struct {
	Level  string // debug|info|warn|error
	Pretty bool   // human-readable console output instead of JSON
}

const startDateLayout = "2006-01-02"

// LoadConfig reads configuration from .env file or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or malformed, validateConfig() terminates the app
//     with a descriptive log message.
func LoadConfig() Config {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("STORAGE_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "spimex.db")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "spimex")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_URL", "")

	v.SetDefault("INGEST_LISTING_URL", "https://spimex.com/markets/oil_products/trades/results/")
	v.SetDefault("INGEST_LINK_SELECTOR", "a.accordeon-inner__item-title.link.xls")
	v.SetDefault("INGEST_TITLE_MARKER", "Бюллетень по итогам торгов в Секции «Нефтепродукты»")
	v.SetDefault("INGEST_REPORTS_DIR", "reports")
	v.SetDefault("INGEST_CONCURRENCY", 5)
	v.SetDefault("INGEST_START_DATE", "2023-01-01")
	v.SetDefault("INGEST_TIMING_FILE", "execution_time.txt")
	v.SetDefault("HTTP_TIMEOUT", "60s")
	v.SetDefault("HTTP_USER_AGENT", "spimexpulse/1.0")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	// Optionally read from .env if present (common in local dev)
	v.SetConfigFile(".env")
	_ = v.ReadInConfig() // ignore error if no .env

	v.AutomaticEnv()

	cfg := Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
		},
		Storage: StorageConfig{
			Driver:     v.GetString("STORAGE_DRIVER"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
			URL:      v.GetString("POSTGRES_URL"),
		},
		Ingestion: IngestionConfig{
			ListingURL:   v.GetString("INGEST_LISTING_URL"),
			LinkSelector: v.GetString("INGEST_LINK_SELECTOR"),
			TitleMarker:  v.GetString("INGEST_TITLE_MARKER"),
			ReportsDir:   v.GetString("INGEST_REPORTS_DIR"),
			Concurrency:  v.GetInt("INGEST_CONCURRENCY"),
			TimingFile:   v.GetString("INGEST_TIMING_FILE"),
			HTTPTimeout:  v.GetDuration("HTTP_TIMEOUT"),
			UserAgent:    v.GetString("HTTP_USER_AGENT"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("REDIS_URL"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	var badStart bool
	if d, err := time.Parse(startDateLayout, v.GetString("INGEST_START_DATE")); err == nil {
		cfg.Ingestion.StartDate = d
	} else {
		badStart = true
	}

	validateConfig(cfg, badStart)
	return cfg
}

// PostgresDSN builds the URL-style DSN used by database/sql with lib/pq.
// User and password are escaped, so credentials may contain URL metacharacters.
func PostgresDSN(p PostgresConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.DBName,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Behavior:
//   - Checks each critical field of cfg.
//   - Postgres fields are only required when the postgres driver is selected
//     without POSTGRES_URL.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig(cfg Config, badStartDate bool) {
	if missing := missingKeys(cfg, badStartDate); len(missing) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", missing)
	}
}

func missingKeys(cfg Config, badStartDate bool) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}

	switch cfg.Storage.Driver {
	case "postgres":
		if cfg.Postgres.URL != "" {
			break
		}
		if cfg.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	case "sqlite":
		if cfg.Storage.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		missing = append(missing, "STORAGE_DRIVER")
	}

	if cfg.Ingestion.ListingURL == "" {
		missing = append(missing, "INGEST_LISTING_URL")
	}
	if cfg.Ingestion.ReportsDir == "" {
		missing = append(missing, "INGEST_REPORTS_DIR")
	}
	if cfg.Ingestion.Concurrency < 1 {
		missing = append(missing, "INGEST_CONCURRENCY")
	}
	if badStartDate {
		missing = append(missing, "INGEST_START_DATE")
	}

	return missing
}

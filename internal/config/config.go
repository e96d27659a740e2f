// Package config loads the tutoring backend settings from environment
// variables, applies defaults, and validates the result. Settings are
// grouped per concern: HTTP server, database, LLM provider, knowledge base,
// review cache, web protection and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-tutor-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects the SQL backend and its startup policy.
type DBConfig struct {
	Driver         string        // sqlite|postgres
	Path           string        // SQLite file
	URL            string        // Postgres DSN
	ConnectRetries int           // attempts before giving up at startup
	ConnectBackoff time.Duration // initial wait between attempts, doubled each time
	MaxOpenConns   int
}

// LLMConfig configures the language model provider. Exactly one provider is
// used for the lifetime of the process.
type LLMConfig struct {
	Provider         string // anthropic|openai
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	MaxTokens        int
	Timeout          time.Duration // per tutor reply
	TitleTimeout     time.Duration // per background title generation
}

// PineconeConfig enables the vector knowledge base when APIKey and Index
// are both set.
type PineconeConfig struct {
	APIKey         string
	Index          string
	Namespace      string
	EmbeddingModel string
}

// Enabled reports whether the vector store is configured.
func (p PineconeConfig) Enabled() bool { return p.APIKey != "" && p.Index != "" }

// RedisConfig configures the optional review cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration // must exceed LLM.Timeout
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	// DevUserID is used when a request carries no X-User-ID header. Empty
	// rejects such requests with 401.
	DevUserID string

	DB  DBConfig
	LLM LLMConfig

	// Knowledge base
	DataPath  string  // markdown knowledge base
	DataMD    string  // optional override for DataPath
	Threshold float64 // minimum retrieval score [0,1]
	RAGTopK   int
	Pinecone  PineconeConfig

	// Tutor
	MaxMessageRunes int
	ReviewLimit     int // default number of review topics returned

	Redis RedisConfig

	// Rate limiting
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 120*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),
		DevUserID:      strings.TrimSpace(getenv("DEV_USER_ID", "")),

		DB: DBConfig{
			Driver:         strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:           getenv("DB_PATH", "tutor.db"),
			URL:            getenv("DATABASE_URL", ""),
			ConnectRetries: getint("DB_CONNECT_RETRIES", 5),
			ConnectBackoff: getdur("DB_CONNECT_BACKOFF", 500*time.Millisecond),
			MaxOpenConns:   getint("DB_MAX_OPEN_CONNS", 10),
		},

		LLM: LLMConfig{
			Provider:         strings.ToLower(getenv("LLM_PROVIDER", "anthropic")),
			AnthropicAPIKey:  getenv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:   getenv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			AnthropicBaseURL: getenv("ANTHROPIC_BASE_URL", ""),
			OpenAIAPIKey:     getenv("OPENAI_API_KEY", ""),
			OpenAIModel:      getenv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:    getenv("OPENAI_BASE_URL", ""),
			MaxTokens:        getint("LLM_MAX_TOKENS", 1024),
			Timeout:          getdur("LLM_TIMEOUT", 60*time.Second),
			TitleTimeout:     getdur("TITLE_TIMEOUT", 20*time.Second),
		},

		DataPath:  getenv("DATA_PATH", "data/knowledge.md"),
		DataMD:    getenv("DATA_MD", ""),
		Threshold: getfloat("THRESHOLD", 0.12),
		RAGTopK:   getint("RAG_TOP_K", 3),
		Pinecone: PineconeConfig{
			APIKey:         getenv("PINECONE_API_KEY", ""),
			Index:          getenv("PINECONE_INDEX", ""),
			Namespace:      getenv("PINECONE_NAMESPACE", ""),
			EmbeddingModel: getenv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},

		MaxMessageRunes: getint("MAX_MESSAGE_RUNES", 4000),
		ReviewLimit:     getint("REVIEW_LIMIT", 10),

		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
			TTL:      getdur("REVIEW_CACHE_TTL", 5*time.Minute),
		},

		RateRPS:   getfloat("RATE_RPS", 2.0),
		RateBurst: getint("RATE_BURST", 5),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-tutor-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	switch cfg.DB.Driver {
	case "postgresql", "pg":
		cfg.DB.Driver = "postgres"
	case "sqlite3":
		cfg.DB.Driver = "sqlite"
	}
	if cfg.LLM.Provider == "claude" {
		cfg.LLM.Provider = "anthropic"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.DB.ConnectRetries < 1 {
		return cfg, errors.New("DB_CONNECT_RETRIES must be >= 1")
	}
	if cfg.DB.ConnectBackoff < 0 {
		return cfg, errors.New("DB_CONNECT_BACKOFF must be >= 0")
	}
	switch cfg.LLM.Provider {
	case "anthropic", "openai":
	default:
		return cfg, errors.New("LLM_PROVIDER must be one of: anthropic, openai")
	}
	if cfg.LLM.Timeout <= 0 || cfg.LLM.TitleTimeout <= 0 {
		return cfg, errors.New("LLM_TIMEOUT and TITLE_TIMEOUT must be positive durations")
	}
	if cfg.LLM.MaxTokens < 1 {
		return cfg, errors.New("LLM_MAX_TOKENS must be >= 1")
	}
	if strings.TrimSpace(cfg.DataPath) == "" {
		return cfg, errors.New("DATA_PATH must not be empty")
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return cfg, errors.New("THRESHOLD must be between 0 and 1")
	}
	if cfg.RAGTopK < 1 {
		return cfg, errors.New("RAG_TOP_K must be >= 1")
	}
	if cfg.MaxMessageRunes < 1 {
		return cfg, errors.New("MAX_MESSAGE_RUNES must be >= 1")
	}
	if cfg.ReviewLimit < 1 {
		return cfg, errors.New("REVIEW_LIMIT must be >= 1")
	}
	if cfg.Redis.TTL <= 0 {
		return cfg, errors.New("REVIEW_CACHE_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// KnowledgePath returns the markdown knowledge base to index.
func (c Config) KnowledgePath() string {
	return sysutil.FirstNonEmpty(c.DataMD, c.DataPath)
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.Path
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch {
		case sysutil.IsTruthy(v):
			return true
		case sysutil.IsFalsy(v):
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}

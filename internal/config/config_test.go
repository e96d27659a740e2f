package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "LLM_PROVIDER", "DB_DRIVER", "DATABASE_URL", "REDIS_ADDR"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" || cfg.DB.Driver != "sqlite" || cfg.LLM.Provider != "anthropic" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Fatalf("LLM timeout default = %v; want 60s", cfg.LLM.Timeout)
	}
	if cfg.Pinecone.Enabled() {
		t.Fatalf("pinecone must be disabled without credentials")
	}
	if cfg.KnowledgePath() != cfg.DataPath {
		t.Fatalf("KnowledgePath should fall back to DataPath")
	}
	if cfg.DB.DSN() != cfg.DB.Path {
		t.Fatalf("sqlite DSN should be the file path")
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("GIN_MODE", "weird")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("DB_DRIVER", "PostgreSQL")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tutor")
	t.Setenv("DB_CONNECT_RETRIES", "3")
	t.Setenv("DB_CONNECT_BACKOFF", "250ms")
	t.Setenv("LLM_PROVIDER", "Claude")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("DATA_MD", "override.md")
	t.Setenv("PINECONE_API_KEY", "pk")
	t.Setenv("PINECONE_INDEX", "curriculum")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REVIEW_CACHE_TTL", "1m")
	t.Setenv("RATE_RPS", "x") // falls back to default
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8088" || cfg.GinMode != "release" || cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Fatalf("server/logging unexpected: %+v", cfg)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("base path = %q", cfg.APIBasePath)
	}
	if cfg.DB.Driver != "postgres" || cfg.DB.DSN() != "postgres://u:p@db:5432/tutor" ||
		cfg.DB.ConnectRetries != 3 || cfg.DB.ConnectBackoff != 250*time.Millisecond {
		t.Fatalf("db unexpected: %+v", cfg.DB)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("llm unexpected: %+v", cfg.LLM)
	}
	if cfg.KnowledgePath() != "override.md" || !cfg.Pinecone.Enabled() {
		t.Fatalf("knowledge unexpected: %+v", cfg)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.TTL != time.Minute {
		t.Fatalf("redis unexpected: %+v", cfg.Redis)
	}
	if cfg.RateRPS != 2.0 {
		t.Fatalf("RATE_RPS fallback = %v", cfg.RateRPS)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"db path", map[string]string{"DB_PATH": "  "}, "DB_PATH must not be empty"},
		{"db driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"postgres url", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL"},
		{"db retries", map[string]string{"DB_CONNECT_RETRIES": "0"}, "DB_CONNECT_RETRIES"},
		{"provider", map[string]string{"LLM_PROVIDER": "gemini"}, "LLM_PROVIDER"},
		{"llm timeout", map[string]string{"LLM_TIMEOUT": "-1s"}, "LLM_TIMEOUT"},
		{"max tokens", map[string]string{"LLM_MAX_TOKENS": "0"}, "LLM_MAX_TOKENS"},
		{"data path", map[string]string{"DATA_PATH": "  "}, "DATA_PATH"},
		{"threshold", map[string]string{"THRESHOLD": "1.5"}, "THRESHOLD"},
		{"top k", map[string]string{"RAG_TOP_K": "0"}, "RAG_TOP_K"},
		{"message runes", map[string]string{"MAX_MESSAGE_RUNES": "0"}, "MAX_MESSAGE_RUNES"},
		{"review limit", map[string]string{"REVIEW_LIMIT": "0"}, "REVIEW_LIMIT"},
		{"cache ttl", map[string]string{"REVIEW_CACHE_TTL": "0s"}, "REVIEW_CACHE_TTL"},
		{"rate rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"rate burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"idempotency", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"otel ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestHelpers_getenv_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}
	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for i, v := range []string{"1", "TRUE", " yes ", "on"} {
		k := "B_T_" + string(rune('a'+i))
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "False", " no ", "off"} {
		k := "B_F_" + string(rune('a'+i))
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: %#v", got)
	}
	for in, want := range map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}

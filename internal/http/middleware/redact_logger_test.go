package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"id=2f1c9a4e-6b7d-4c3e-8a9b-0c1d2e3f4a5b", "id=[REDACTED:id]"},
		{"email=aluno@escola.co.mz", "email=[REDACTED:email]"},
		{"tel=841234567", "tel=[REDACTED:phone]"},
		{"page=2&size=20", "page=2&size=20"},
	}
	for _, tc := range cases {
		if got := redact(tc.in); got != tc.want {
			t.Errorf("redact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactingLogger_LevelsAndMasking(t *testing.T) {
	buf := captureLogger(t)
	r := newEngine(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{" X-Secret "}}))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(http.ErrAbortHandler)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok?email=a@b.com", nil)
	req.Header.Set("Authorization", "Bearer t0k3n")
	req.Header.Set("X-Secret", "shh")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	out := buf.String()
	for _, leak := range []string{"t0k3n", "shh", "a@b.com"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}

	lines := logLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	wantLevels := []string{"info", "warn", "error"}
	for i, l := range lines {
		if l["level"] != wantLevels[i] {
			t.Errorf("line %d level = %v, want %s", i, l["level"], wantLevels[i])
		}
		if l["message"] != "http_request" || l["request_id"] == "" {
			t.Errorf("line %d = %v", i, l)
		}
	}
	if lines[2]["errors"] == nil {
		t.Error("gin errors not logged")
	}
}

func TestRedactingLogger_RouteTemplate(t *testing.T) {
	buf := captureLogger(t)
	r := newEngine(RedactingLogger(RedactOptions{}))
	r.GET("/conversations/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/conversations/secret-id", nil))
	if strings.Contains(buf.String(), "secret-id") {
		t.Fatalf("raw path logged: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "/conversations/:id") {
		t.Fatalf("route template missing: %s", buf.String())
	}
}

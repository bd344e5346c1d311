package web

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
	"bubbleview/pkg/log/transporters"
)

func setupTestApp() *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(RequestIDConfig()))
	app.Use(RequestIDToContextMiddleware())
	return app
}

func TestRequestIDToContext_ExtractsIDFromFiber(t *testing.T) {
	app := setupTestApp()

	var capturedRequestID string
	app.Get("/test", func(c *fiber.Ctx) error {
		capturedRequestID = log.RequestIDFromContext(c.UserContext())
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if capturedRequestID == "" {
		t.Error("request_id should be extracted from Fiber's requestid middleware")
	}

	headerID := resp.Header.Get("X-Request-ID")
	if headerID != capturedRequestID {
		t.Errorf("response header = %q, context = %q, should match", headerID, capturedRequestID)
	}
}

func TestRequestIDToContext_UsesProvidedID(t *testing.T) {
	app := setupTestApp()

	var capturedRequestID string
	app.Get("/test", func(c *fiber.Ctx) error {
		capturedRequestID = log.RequestIDFromContext(c.UserContext())
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "custom-trace-id-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if capturedRequestID != "custom-trace-id-123" {
		t.Errorf("request_id = %q, want %q", capturedRequestID, "custom-trace-id-123")
	}
}

func TestSlugToContext_AddsSlugField(t *testing.T) {
	app := setupTestApp()

	var fields map[string]any
	app.Get("/b/:slug", SlugToContextMiddleware(), func(c *fiber.Ctx) error {
		fields = log.FieldsFromContext(c.UserContext())
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/b/abc-123", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if fields["slug"] != "abc-123" {
		t.Errorf("slug field = %v, want abc-123", fields["slug"])
	}
}

func TestRequestLoggerMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Info, transporters.NewStdoutWithWriter(&buf))
	log.SetDefault(logger)
	defer logger.Close()

	app := setupTestApp()
	app.Use(RequestLoggerMiddleware(nil))
	app.Get("/test-path", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req := httptest.NewRequest("GET", "/test-path", nil)
	req.Header.Set("X-Request-ID", "test-req-123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// Wait for async log
	logger.Close()

	output := buf.String()
	for _, want := range []string{"request completed", "test-req-123", "/test-path", "200"} {
		if !strings.Contains(output, want) {
			t.Errorf("log should contain %q, got: %s", want, output)
		}
	}
}

func TestRequestLoggerMiddleware_StatusSelectsLevel(t *testing.T) {
	tests := []struct {
		name    string
		handler fiber.Handler
		level   string
		status  int
	}{
		{"4xx is WARN", func(c *fiber.Ctx) error { return c.Status(404).SendString("not found") }, "WARN", 404},
		{"5xx is ERROR", func(c *fiber.Ctx) error { return c.Status(500).SendString("internal error") }, "ERROR", 500},
		{"returned error goes through the error handler", func(c *fiber.Ctx) error { return domain.ErrRateLimited }, "WARN", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			logger := log.New(log.Info, transporters.NewStdoutWithWriter(&buf))
			log.SetDefault(logger)
			defer logger.Close()

			h := &Handlers{}
			app := fiber.New(fiber.Config{ErrorHandler: h.ErrorHandler})
			app.Use(RequestLoggerMiddleware(nil))
			app.Get("/api/x", tt.handler)

			// Act
			resp, err := app.Test(httptest.NewRequest("GET", "/api/x", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)
			logger.Close()

			// Assert
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("expected level %s, got: %s", tt.level, buf.String())
			}
		})
	}
}

func TestRequestLoggerMiddleware_RecordsMetrics(t *testing.T) {
	// Arrange
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLoggerMiddleware(metrics))
	app.Get("/b/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })

	// Act
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/b/abc", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
	}

	// Assert
	want := `bubbleview_http_requests_total{method="GET",route="/b/:slug",status="200"} 2`
	if out := scrapeMetrics(t, metrics); !strings.Contains(out, want) {
		t.Errorf("expected %q in:\n%s", want, out)
	}
}

func scrapeMetrics(t *testing.T, m *Metrics) string {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", m.Handler())
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestRateLimiter_BurstExhausted_Rejects(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(0.001, 2)
	defer rl.Close()

	// Act
	first, second, third := rl.Allow("1.2.3.4"), rl.Allow("1.2.3.4"), rl.Allow("1.2.3.4")
	other := rl.Allow("5.6.7.8")

	// Assert
	if !first || !second {
		t.Error("requests within the burst should be allowed")
	}
	if third {
		t.Error("request beyond the burst should be rejected")
	}
	if !other {
		t.Error("other clients have their own bucket")
	}
}

func TestRateLimiter_Middleware_Returns429(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()
	h := &Handlers{}
	app := fiber.New(fiber.Config{ErrorHandler: h.ErrorHandler})
	app.Use("/api", rl.Middleware())
	app.Get("/api/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	// Act
	first, err := app.Test(httptest.NewRequest("GET", "/api/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	first.Body.Close()
	second, err := app.Test(httptest.NewRequest("GET", "/api/ping", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer second.Body.Close()
	body, _ := io.ReadAll(second.Body)

	// Assert
	if first.StatusCode != 200 {
		t.Errorf("first status = %d, want 200", first.StatusCode)
	}
	if second.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.StatusCode)
	}
	if second.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if !strings.Contains(string(body), "Too many requests") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestRateLimiter_Sweep_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	rl.Allow("a")

	rl.Sweep(time.Now().Add(rl.ttl + time.Second))

	if rl.Len() != 0 {
		t.Errorf("Len = %d after sweep, want 0", rl.Len())
	}
}

func TestFriendlyError_MapsStatus(t *testing.T) {
	h := &Handlers{}
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrBubbleNotFound, 404},
		{domain.ErrInvalidSlug, 400},
		{domain.ErrRateLimited, 429},
		{domain.ErrEmptyBubble, 400},
		{domain.ErrUnknownKind, 400},
		{errors.Join(domain.ErrFetchFailed, errors.New("dial tcp")), 502},
		{fiber.NewError(422, "nope"), 422},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, msg := h.friendlyError(tt.err)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if msg == "" {
				t.Error("expected a message")
			}
		})
	}
}

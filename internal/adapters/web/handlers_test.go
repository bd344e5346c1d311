package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"bubbleview/internal/adapters/cache"
	"bubbleview/internal/adapters/store"
	"bubbleview/internal/adapters/web"
	"bubbleview/internal/domain"
	"bubbleview/internal/usecases"
)

type testServer struct {
	app      *fiber.App
	store    *store.PebbleStore
	sessions *web.Sessions
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.Open("bubbles", store.InMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	bubbleCache := cache.NewMemoryCache[*domain.Bubble](time.Minute)
	metrics := web.NewMetrics()
	sessions := web.NewSessions(time.Minute, time.Hour, metrics)
	t.Cleanup(func() {
		sessions.Close()
		bubbleCache.Close()
		st.Close()
	})

	getBubble := usecases.NewGetBubbleUseCase(bubbleCache, st)
	handlers := web.NewHandlers(
		getBubble,
		usecases.NewViewBubbleUseCase(getBubble, nil),
		usecases.NewCreateBubbleUseCase(st, "https://bubbles.example/b"),
		sessions,
		metrics,
	)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(web.RequestLoggerMiddleware(metrics))
	web.SetupRoutes(app, handlers, nil, metrics)

	_, err = st.Save(context.Background(), &domain.Bubble{
		Slug:        "demo",
		ContentText: `Look at <file-token id="f1"></file-token> and <file-token id="l1"></file-token>`,
		Grammar:     "id",
		CreatedBy:   "Ana",
		Attachments: []domain.Attachment{
			{ID: "f1", Kind: domain.KindFile, Name: "photo.png", DownloadURL: "https://cdn.example/photo.png"},
			{ID: "l1", Kind: domain.KindLink, SourceURL: "https://github.com/acme/repo"},
		},
	})
	if err != nil {
		t.Fatalf("seed bubble: %v", err)
	}

	return &testServer{app: app, store: st, sessions: sessions}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAPIGetBubble_NoSelection_SelectsFirstAttachment(t *testing.T) {
	// Arrange
	srv := newTestServer(t)

	// Act
	resp, body := srv.do(t, httptest.NewRequest("GET", "/api/bubbles/demo", nil))

	// Assert
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var got struct {
		Slug       string `json:"slug"`
		Grammar    string `json:"grammar"`
		SelectedID string `json:"selectedId"`
		Items      []struct {
			Kind   string `json:"kind"`
			Active bool   `json:"active"`
		} `json:"items"`
		Preview struct {
			Strategy string `json:"strategy"`
			MediaURL string `json:"mediaUrl"`
		} `json:"preview"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Slug != "demo" || got.Grammar != "id" || got.SelectedID != "f1" {
		t.Errorf("got slug %q grammar %q selected %q", got.Slug, got.Grammar, got.SelectedID)
	}
	if len(got.Items) != 4 || got.Items[1].Kind != "button" || !got.Items[1].Active {
		t.Errorf("unexpected items: %+v", got.Items)
	}
	if got.Preview.Strategy != "IMAGE" || got.Preview.MediaURL != "https://cdn.example/photo.png" {
		t.Errorf("unexpected preview: %+v", got.Preview)
	}
}

func TestAPIGetBubble_SelectedLink_ReturnsLinkPreview(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, httptest.NewRequest("GET", "/api/bubbles/demo?selected=l1", nil))

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"strategy":"LINK"`) || !strings.Contains(string(body), `"siteLabel":"GitHub"`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestAPIGetBubble_Errors_MapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown slug", "/api/bubbles/missing", 404},
		{"malformed slug", "/api/bubbles/bad.slug", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			srv := newTestServer(t)

			// Act
			resp, body := srv.do(t, httptest.NewRequest("GET", tt.target, nil))

			// Assert
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(string(body), `"error"`) {
				t.Errorf("expected JSON error body, got %s", body)
			}
		})
	}
}

func TestViewBubble_RendersPage(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, httptest.NewRequest("GET", "/b/demo", nil))

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	html := string(body)
	for _, want := range []string{"Bubble from Ana", "attachment-button active", "preview-image"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestViewBubble_NotFound_RendersErrorPage(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, httptest.NewRequest("GET", "/b/missing", nil))

	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(string(body), "couldn&#39;t be found") && !strings.Contains(string(body), "couldn't be found") {
		t.Errorf("expected friendly message, got %s", body)
	}
}

func TestOpen_RedirectsToBubblePage(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, httptest.NewRequest("GET", "/b?slug=+demo+", nil))

	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/b/demo" {
		t.Errorf("Location = %q", loc)
	}
}

func TestAPICreateBubble_ThenView_RoundTrips(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	payload := `{
		"createdBy": "Bo",
		"parts": [
			{"text": "Slides:"},
			{"attachment": {"name": "deck.pdf", "url": "https://cdn.example/deck.pdf", "size": 2048}},
			{"text": "and the repo"},
			{"attachment": {"kind": "link", "url": "https://github.com/acme/repo"}}
		]
	}`

	// Act
	resp, body := srv.do(t, jsonRequest("POST", "/api/bubbles", payload))

	// Assert
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var created struct {
		Slug     string `json:"slug"`
		ShareURL string `json:"shareUrl"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ShareURL != "https://bubbles.example/b/"+created.Slug {
		t.Errorf("ShareURL = %q", created.ShareURL)
	}
	if resp.Header.Get("Location") != created.ShareURL {
		t.Errorf("Location = %q", resp.Header.Get("Location"))
	}

	viewResp, viewBody := srv.do(t, httptest.NewRequest("GET", "/api/bubbles/"+created.Slug, nil))
	if viewResp.StatusCode != 200 {
		t.Fatalf("view status = %d", viewResp.StatusCode)
	}
	for _, want := range []string{`"strategy":"PDF"`, `"createdBy":"Bo"`, `"size":"2.0 KB"`} {
		if !strings.Contains(string(viewBody), want) {
			t.Errorf("expected %s in %s", want, viewBody)
		}
	}
}

func TestAPICreateBubble_BadInput_Returns400(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"parts": []}`},
		{"unknown kind", `{"parts": [{"attachment": {"kind": "hologram", "url": "https://x"}}]}`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)

			resp, body := srv.do(t, jsonRequest("POST", "/api/bubbles", tt.body))

			if resp.StatusCode != 400 {
				t.Errorf("status = %d, want 400 (body %s)", resp.StatusCode, body)
			}
		})
	}
}

func TestAPISelect_NewSession_StartsTransition(t *testing.T) {
	// Arrange
	srv := newTestServer(t)

	// Act
	resp, body := srv.do(t, jsonRequest("POST", "/api/bubbles/demo/select", `{"id": "l1"}`))

	// Assert
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	sessionID := resp.Header.Get(web.HeaderSessionID)
	if sessionID == "" {
		t.Fatal("expected a session id header")
	}
	var got struct {
		SessionID string `json:"sessionId"`
		Selected  string `json:"selected"`
		Active    string `json:"active"`
		State     string `json:"state"`
		Direction int    `json:"direction"`
		Preview   struct {
			Strategy    string `json:"strategy"`
			Highlighted bool   `json:"highlighted"`
		} `json:"preview"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SessionID != sessionID || got.Selected != "l1" || got.Active != "f1" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if got.State != "transitioning" || got.Direction != 1 {
		t.Errorf("state = %q direction = %d", got.State, got.Direction)
	}
	if got.Preview.Strategy != "LINK" || got.Preview.Highlighted {
		t.Errorf("unexpected preview: %+v", got.Preview)
	}
	if srv.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", srv.sessions.Len())
	}
}

func TestAPISelect_ByIndex_UsesExistingSession(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	first, _ := srv.do(t, jsonRequest("POST", "/api/bubbles/demo/select", `{"index": 1}`))
	sessionID := first.Header.Get(web.HeaderSessionID)

	// Act
	req := httptest.NewRequest("GET", "/api/bubbles/demo/selection", nil)
	req.Header.Set(web.HeaderSessionID, sessionID)
	resp, body := srv.do(t, req)

	// Assert
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"selected":"l1"`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestAPISelect_UnknownAttachment_Returns422(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, jsonRequest("POST", "/api/bubbles/demo/select", `{"id": "nope"}`))

	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestAPISelection_NoSession_Returns404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/bubbles/demo/selection", nil)
	req.Header.Set(web.HeaderSessionID, "never-seen")
	resp, _ := srv.do(t, req)

	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMetrics_ServesPrometheusText(t *testing.T) {
	// Arrange
	srv := newTestServer(t)
	srv.do(t, httptest.NewRequest("GET", "/api/bubbles/demo", nil))

	// Act
	resp, body := srv.do(t, httptest.NewRequest("GET", "/metrics", nil))

	// Assert
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"bubbleview_http_requests_total", `bubbleview_bubble_views_total{strategy="IMAGE"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

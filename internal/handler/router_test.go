package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/apibase/internal/auth"
	"github.com/hitoshi/apibase/internal/middleware"
	"github.com/hitoshi/apibase/internal/model"
	"github.com/hitoshi/apibase/internal/repository"
)

// stubOAuthProvider はルーター統合テスト用のOAuthプロバイダー。
type stubOAuthProvider struct {
	profile *model.Profile
}

func (p *stubOAuthProvider) LoginURL(state string) string {
	return "https://www.facebook.com/v12.0/dialog/oauth?state=" + state
}

func (p *stubOAuthProvider) ExchangeCode(ctx context.Context, code string) (*model.Profile, error) {
	return p.profile, nil
}

// newTestRouter は実サービスとインメモリストアで組んだルーターを返す。
func newTestRouter(t *testing.T, provider auth.OAuthProvider, externalURL string, externalClient *http.Client) http.Handler {
	t.Helper()

	repo := repository.NewMemorySessionRepo()
	authService := auth.NewService(provider, repo, auth.ServiceConfig{SessionMaxAge: 86400})

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	if externalClient == nil {
		externalClient = http.DefaultClient
	}

	return NewRouter(&RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		SessionEnsurer:    authService,
		SessionCookie:     middleware.SessionCookieConfig{MaxAge: 86400},
		RateLimiter:       limiter,
		AuthService:       authService,
		AuthConfig:        AuthHandlerConfig{SessionMaxAge: 86400},
		ExternalClient:    externalClient,
		ExternalAPIURL:    externalURL,
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &stubOAuthProvider{}, "http://example.invalid", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if got["message"] != "API is Live!" {
		t.Errorf("message = %q, want %q", got["message"], "API is Live!")
	}
}

func TestRouter_UnknownPath_Returns404(t *testing.T) {
	router := newTestRouter(t, &stubOAuthProvider{}, "http://example.invalid", nil)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent-path", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	var got middleware.ErrorResponseBody
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if got.Success {
		t.Error("success = true, want false")
	}
	if got.Message != "API route does not exist" {
		t.Errorf("message = %q, want %q", got.Message, "API route does not exist")
	}
}

func TestRouter_Home_Anonymous(t *testing.T) {
	router := newTestRouter(t, &stubOAuthProvider{}, "http://example.invalid", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "You are not logged in" {
		t.Errorf("body = %q, want %q", got, "You are not logged in")
	}

	// 初回アクセスで匿名セッションCookieが発行されること
	if findCookie(w.Result(), "session_id") == nil {
		t.Error("expected anonymous session cookie to be issued")
	}
}

func TestRouter_LoginRedirectStatus(t *testing.T) {
	router := newTestRouter(t, &stubOAuthProvider{}, "http://example.invalid", nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/facebook", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// ログイン開始は302でリダイレクトすること
	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); !strings.Contains(location, "facebook.com") {
		t.Errorf("Location = %q, should point at the consent screen", location)
	}
}

func TestRouter_LoginFlow_HomeShowsProfile(t *testing.T) {
	profile := &model.Profile{
		ID:       "fb-777",
		Name:     "Hanako Suzuki",
		Email:    "hanako@example.com",
		PhotoURL: "https://example.com/hanako.jpg",
	}
	router := newTestRouter(t, &stubOAuthProvider{profile: profile}, "http://example.invalid", nil)

	// 1. コールバックでログイン完了
	req := httptest.NewRequest(http.MethodGet, "/auth/facebook/callback?code=good-code&state=st", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "st"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("callback status = %d, want 302", w.Code)
	}
	sessionCookie := findCookie(w.Result(), "session_id")
	if sessionCookie == nil {
		t.Fatal("expected session cookie after login")
	}

	// 2. 同じセッションでルートにアクセス
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionCookie.Value})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("home status = %d, want 200", w.Code)
	}

	var got homeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if !got.Success {
		t.Error("success = false, want true")
	}
	if got.Message != "Logged in successfully" {
		t.Errorf("message = %q, want %q", got.Message, "Logged in successfully")
	}
	if got.User == nil || *got.User != *profile {
		t.Errorf("user = %+v, want %+v", got.User, profile)
	}
}

func TestRouter_ExternalDemo_Success(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer remote.Close()

	router := newTestRouter(t, &stubOAuthProvider{}, remote.URL, remote.Client())

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var got demoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("response should be JSON: %v", err)
	}
	if got.Data != http.StatusOK {
		t.Errorf("data = %d, want 200", got.Data)
	}
}

func TestRouter_CORSHeadersApplied(t *testing.T) {
	router := newTestRouter(t, &stubOAuthProvider{}, "http://example.invalid", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}

func TestRouter_PanicRecovered_Returns500(t *testing.T) {
	// パニックするハンドラーをリカバリーミドルウェアに通す
	recovered := middleware.NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected failure")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	recovered.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

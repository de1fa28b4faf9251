package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/apibase/internal/middleware"
	"github.com/hitoshi/apibase/internal/openapi"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	CORSAllowedOrigin string
	SessionEnsurer    middleware.SessionEnsurer
	SessionCookie     middleware.SessionCookieConfig
	RateLimiter       *middleware.RateLimiter
	RequestRecorder   middleware.RequestRecorder // nilの場合はメトリクス記録なし

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig
	LoginRec    LoginRecorder

	// 外部APIデモ
	ExternalClient  *http.Client
	ExternalAPIURL  string
	ExternalCallRec ExternalCallRecorder

	// ドキュメントとメトリクス配信
	OpenAPI        *openapi.Handler
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Logging → Metrics → Recovery → SecurityHeaders → Session → RateLimit
//
// 運用系ルート（/health, /openapi.json, /docs, /metrics）はセッションと
// レート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.RequestRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.RequestRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// 未定義ルートは統一フォーマットの404を返す
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteNotFound(w)
	})

	// --- 運用系ルート ---
	r.Get("/health", Health)
	if deps.OpenAPI != nil {
		r.Get("/openapi.json", deps.OpenAPI.ServeSpec)
		r.Get("/docs", deps.OpenAPI.ServeDocs)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- アプリケーションルート ---
	// ミドルウェアスタック: Session → RateLimit
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.LoginRec)
	homeHandler := NewHomeHandler()
	demoHandler := NewDemoHandler(deps.ExternalClient, deps.ExternalAPIURL, deps.ExternalCallRec)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionEnsurer, deps.SessionCookie))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Method(http.MethodGet, "/", appHandler(homeHandler.Home))
		r.Method(http.MethodGet, "/api", appHandler(demoHandler.CallExternal))

		r.Route("/auth", func(r chi.Router) {
			r.Method(http.MethodGet, "/facebook", appHandler(authHandler.Login))
			r.Method(http.MethodGet, "/facebook/callback", appHandler(authHandler.Callback))
			r.Method(http.MethodPost, "/logout", appHandler(authHandler.Logout))
		})
	})

	return r
}

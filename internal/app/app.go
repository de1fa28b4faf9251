// Package app はアプリケーションの初期化と起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/apibase/internal/auth"
	"github.com/hitoshi/apibase/internal/config"
	"github.com/hitoshi/apibase/internal/database"
	"github.com/hitoshi/apibase/internal/handler"
	"github.com/hitoshi/apibase/internal/keepalive"
	"github.com/hitoshi/apibase/internal/logger"
	"github.com/hitoshi/apibase/internal/metrics"
	"github.com/hitoshi/apibase/internal/middleware"
	"github.com/hitoshi/apibase/internal/repository"
	"github.com/hitoshi/apibase/internal/security"
	"github.com/hitoshi/apibase/internal/worker/cleanup"
)

// apiVersion はOpenAPIドキュメントに載せるAPIバージョン。
const apiVersion = "1.0.0"

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) *config.Config {
	// ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	return config.Load()
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg := Init(w)

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.Port),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// バックグラウンドジョブ用のコンテキスト。シャットダウン時に
	// まとめてキャンセルする。
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	// 1. セッションストアの選択
	// DATABASE_URL未設定時はインメモリストアで動作する
	var sessionRepo repository.SessionRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		slog.Info("database connection established")
		sessionRepo = repository.NewPostgresSessionRepo(db)

		// 期限切れセッションの日次クリーンアップ
		go cleanup.NewCleanupJob(db, slog.Default()).StartDaily(jobCtx)
	} else {
		slog.Info("DATABASE_URL not set, using in-memory session store")
		sessionRepo = repository.NewMemorySessionRepo()
	}

	// 2. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	externalClient := ssrfGuard.NewSafeClient(cfg.ExternalTimeout)

	// 3. 認証サービスの初期化
	if cfg.UsesPlaceholderCredentials() {
		slog.Warn("facebook oauth credentials are placeholders, login will fail against the real provider")
	}
	oauthProvider := auth.NewFacebookOAuthProvider(auth.FacebookOAuthConfig{
		AppID:       cfg.FacebookAppID,
		AppSecret:   cfg.FacebookAppSecret,
		RedirectURL: cfg.OAuthRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. OpenAPIドキュメントの構築
	apiDoc, err := buildAPIDocument(cfg)
	if err != nil {
		return fmt.Errorf("failed to build openapi document: %w", err)
	}

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigForRPM(cfg.RateLimitGeneral),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger: slog.Default(),

		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		SessionEnsurer:    authService,
		SessionCookie: middleware.SessionCookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionMaxAge,
		},
		RateLimiter:     rateLimiter,
		RequestRecorder: collector,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		LoginRec: collector,

		ExternalClient:  externalClient,
		ExternalAPIURL:  cfg.ExternalAPIURL,
		ExternalCallRec: collector,

		OpenAPI:        apiDoc,
		MetricsHandler: metrics.Handler(registry),
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 8. 自己pingの起動（SELF_PING_INTERVALが正の場合のみ）
	// 宛先は自分自身のBASE_URLなのでSSRFガードは通さない。
	// ガード付きクライアントはループバックや80/443以外のポートを拒否するため、
	// ローカル動作時にpingが一切届かなくなる。
	if cfg.SelfPingInterval > 0 {
		pinger := keepalive.NewPinger(
			&http.Client{Timeout: 10 * time.Second}, cfg.BaseURL, slog.Default(),
		)
		go pinger.Start(jobCtx, cfg.SelfPingInterval)
	}

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルな構造体として各コンポーネントに
// 参照で渡す。グローバル変数としては保持しない。
type Config struct {
	// Server
	Port    string
	BaseURL string

	// OAuth (Facebook)
	FacebookAppID     string
	FacebookAppSecret string
	OAuthRedirectURL  string

	// Session
	// DatabaseURLが空の場合、セッションはインメモリストアに保存される。
	DatabaseURL   string
	SessionMaxAge int

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Rate Limit（req/min/クライアント）
	RateLimitGeneral int

	// External API demo
	ExternalAPIURL  string
	ExternalTimeout time.Duration

	// Self ping。0の場合は無効（デフォルト）。
	SelfPingInterval time.Duration
}

// プレースホルダのOAuth認証情報。
// 環境変数未設定時のフォールバックであり、本番では必ず上書きすること。
const (
	placeholderAppID     = "your-facebook-app-id"
	placeholderAppSecret = "your-facebook-app-secret"
)

// Load は環境変数からConfigを読み込む。
// すべての環境変数はオプショナルで、未設定の場合はリテラルの
// デフォルト値に静かにフォールバックする。エラーは返さない。
func Load() *Config {
	cfg := &Config{}

	cfg.Port = getEnvString("PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")

	cfg.FacebookAppID = getEnvString("FACEBOOK_APP_ID", placeholderAppID)
	cfg.FacebookAppSecret = getEnvString("FACEBOOK_APP_SECRET", placeholderAppSecret)
	cfg.OAuthRedirectURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/auth/facebook/callback"

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")

	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)

	cfg.ExternalAPIURL = getEnvString("EXTERNAL_API_URL", "https://httpbin.org/get")
	cfg.ExternalTimeout = getEnvDuration("EXTERNAL_TIMEOUT", 10*time.Second)

	cfg.SelfPingInterval = getEnvDuration("SELF_PING_INTERVAL", 0)

	return cfg
}

// UsesPlaceholderCredentials はOAuth認証情報がプレースホルダのままかを返す。
// 起動時の警告ログ用。
func (c *Config) UsesPlaceholderCredentials() bool {
	return c.FacebookAppID == placeholderAppID || c.FacebookAppSecret == placeholderAppSecret
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

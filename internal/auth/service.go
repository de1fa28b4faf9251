// Package auth はOAuth認証フローとセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/apibase/internal/model"
	"github.com/hitoshi/apibase/internal/repository"
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 1プロバイダー = 1実装。将来的に複数IdP（Facebook, Google等）に
// 対応するための抽象化。
type OAuthProvider interface {
	// LoginURL はIdPの同意画面へのリダイレクトURLを生成する。
	LoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、プロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*model.Profile, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証とセッションに関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, sessionRepo repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		oauth:       oauth,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// LoginURL はOAuth認証URLを生成する。
func (s *Service) LoginURL(state string) string {
	return s.oauth.LoginURL(state)
}

// HandleCallback はOAuthコールバックを処理する。
// 認可コードをプロフィールに交換し、呼び出し元のセッションに
// プロフィールをそのまま上書き保存する。セッションが存在しない場合は
// 新規セッションを発行してからプロフィールを保存する。
func (s *Service) HandleCallback(ctx context.Context, sessionID, code string) (*model.Session, error) {
	// 1. 認可コードをプロフィールに交換
	profile, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. セッションの解決（無効な場合は新規発行）
	session, err := s.findOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// 3. プロフィールをセッションに上書き保存
	if err := s.sessionRepo.SaveProfile(ctx, session.ID, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	session.Profile = profile

	slog.Info("user logged in",
		slog.String("session_id", session.ID),
		slog.String("provider_user_id", profile.ID),
	)

	return session, nil
}

// FindSession はセッションIDからセッションを取得する。
// 見つからない場合と期限切れの場合はnilを返す。
func (s *Service) FindSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// EnsureSession はセッションを取得し、存在しない場合は匿名セッションを
// 遅延生成する。戻り値のcreatedは新規発行されたかを示す。
func (s *Service) EnsureSession(ctx context.Context, sessionID string) (session *model.Session, created bool, err error) {
	if sessionID != "" {
		session, err = s.sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to find session: %w", err)
		}
		if session != nil {
			return session, false, nil
		}
	}

	session, err = s.createSession(ctx)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// findOrCreateSession はセッションを解決し、無効な場合は新規発行する。
func (s *Service) findOrCreateSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, _, err := s.EnsureSession(ctx, sessionID)
	return session, err
}

// createSession は匿名セッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

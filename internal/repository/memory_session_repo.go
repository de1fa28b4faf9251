package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/apibase/internal/model"
)

// MemorySessionRepo はプロセス内メモリを使用したセッションリポジトリ。
// プロセス再起動で全セッションが失われるため、単一インスタンス構成でのみ
// 使用できる。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]*model.Session),
	}
}

// Create はセッションを作成する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

// FindByID は指定IDのセッションを取得する。
// 期限切れのセッションはこの時点で破棄し、nilを返す。
func (r *MemorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(session.ExpiresAt) {
		delete(r.sessions, id)
		return nil, nil
	}

	cp := *session
	return &cp, nil
}

// SaveProfile はセッションにプロフィールを上書き保存する。
// セッションが存在しない、または期限切れの場合は何もしない。
func (r *MemorySessionRepo) SaveProfile(ctx context.Context, sessionID string, profile *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil
	}
	session.Profile = profile
	return nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *MemorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// compile-time interface check
var _ SessionRepository = (*MemorySessionRepo)(nil)

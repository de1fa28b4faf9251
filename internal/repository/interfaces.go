// Package repository はセッションデータ永続化のインターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/apibase/internal/model"
)

// SessionRepository はセッションデータの永続化インターフェース。
// デフォルトはインメモリ実装。DATABASE_URLが設定されている場合は
// PostgreSQL実装が選択される。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合と期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// SaveProfile はセッションにプロフィールを上書き保存する。
	// 同一セッションへの並行書き込みはlast-write-winsとなる。
	SaveProfile(ctx context.Context, sessionID string, profile *model.Profile) error

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

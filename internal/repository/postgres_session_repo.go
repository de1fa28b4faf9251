package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/apibase/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// プロフィールはJSONとしてdataカラムに格納する。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	data, err := marshalProfile(session.Profile)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		session.ID, data, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, data, expires_at, created_at
		 FROM sessions
		 WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&session.ID, &data, &session.ExpiresAt, &session.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	profile, err := unmarshalProfile(data)
	if err != nil {
		return nil, err
	}
	session.Profile = profile

	return session, nil
}

// SaveProfile はセッションにプロフィールを上書き保存する。
func (r *PostgresSessionRepo) SaveProfile(ctx context.Context, sessionID string, profile *model.Profile) error {
	data, err := marshalProfile(profile)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE sessions SET data = $2 WHERE id = $1`,
		sessionID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save session profile: %w", err)
	}
	return nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// marshalProfile はプロフィールをJSONにシリアライズする。
// 匿名セッション（profile == nil）は空オブジェクトとして格納する。
func marshalProfile(profile *model.Profile) ([]byte, error) {
	if profile == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}
	return data, nil
}

// unmarshalProfile はJSONからプロフィールを復元する。
// 空オブジェクトは匿名セッションを意味し、nilを返す。
func unmarshalProfile(data []byte) (*model.Profile, error) {
	if len(data) == 0 || string(data) == "{}" {
		return nil, nil
	}
	profile := &model.Profile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if profile.ID == "" {
		return nil, nil
	}
	return profile, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)

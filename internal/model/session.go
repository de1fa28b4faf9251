// Package model はドメインモデルを定義する。
package model

import "time"

// Profile はIdPから取得したユーザープロフィールを表す。
// プロバイダーが返したオブジェクトをそのまま保持し、
// フィールドの射影・検証・重複排除は行わない。
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Session はブラウザセッションを表す。
// 初回アクセス時に匿名セッションとして遅延生成され、
// 認証完了のたびにProfileが上書きされる。
// 不変条件: ProfileはnilかIdPが最後に返したプロフィールのいずれか。
type Session struct {
	ID        string
	Profile   *Profile
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Authenticated はセッションが認証済み状態かを返す。
func (s *Session) Authenticated() bool {
	return s != nil && s.Profile != nil
}

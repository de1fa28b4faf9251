package handler

import (
	"net/http"

	"github.com/hitoshi/apibase/internal/middleware"
	"github.com/hitoshi/apibase/internal/model"
)

// homeResponse はログイン済みユーザーへのルートレスポンス。
type homeResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *model.Profile `json:"user"`
}

// HomeHandler はセッション状態を表示するHTTPハンドラー。
type HomeHandler struct{}

// NewHomeHandler はHomeHandlerを生成する。
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home は現在のセッション状態を返す。
// GET /
//
// 未ログイン時はプレーンテキストのメッセージを返す。
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) error {
	session := middleware.SessionFromContext(r.Context())
	if session == nil || !session.Authenticated() {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("You are not logged in"))
		return nil
	}

	respondJSON(w, http.StatusOK, homeResponse{
		Success: true,
		Message: "Logged in successfully",
		User:    session.Profile,
	})
	return nil
}

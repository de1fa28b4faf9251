// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/apibase/internal/middleware"
	"github.com/hitoshi/apibase/internal/model"
)

// appHandler はエラーを返すHTTPハンドラー。
// 返されたエラーは統一フォーマットのエラーレスポンスに変換される。
// *model.APIError はそのステータスを尊重し、それ以外は500になる。
// エラーメッセージはそのままレスポンスにエコーされる（既存クライアント
// 互換のため意図的に維持）。
type appHandler func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP はhttp.Handlerを実装する。
func (fn appHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		slog.Error("handler error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			middleware.WriteError(w, apiErr.Status, apiErr.Message)
			return
		}
		middleware.WriteServerError(w, err.Error())
	}
}

// respondJSON はJSONレスポンスを書き込む。
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Success bool   `json:"success"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// WriteError は指定ステータスの統一エラーレスポンスを書き込む。
// 失敗メッセージはそのままクライアントにエコーされる。情報漏洩の懸念は
// あるが、既存クライアントがリテラルのメッセージに依存しているため
// 意図的に維持している。
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Success: false,
		Status:  status,
		Message: message,
	})
}

// WriteServerError は500エラーの統一レスポンスを書き込む。
func WriteServerError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteNotFound は未定義ルートに対する404の統一レスポンスを書き込む。
func WriteNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Success: false,
		Message: "API route does not exist",
	})
}

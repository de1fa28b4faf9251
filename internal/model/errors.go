// Package model はドメインモデルを定義する。
package model

// APIError はハンドラーが返す失敗を表す。
// Messageはそのままクライアントへエコーされ、Statusがレスポンスの
// HTTPステータスコードになる。
type APIError struct {
	Code    string // エラーコード
	Status  int    // HTTPステータスコード
	Message string // クライアントにエコーされるメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return e.Message
}

// 定義済みエラーコード
const (
	ErrCodeInternal = "INTERNAL_ERROR"
)

// NewInternalError は内部エラーを生成する。
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Status:  500,
		Message: message,
	}
}

package handler

import "net/http"

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Message string `json:"message"`
}

// Health はAPIの生存確認を返す。依存先のチェックは行わない。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Message: "API is Live!"})
}

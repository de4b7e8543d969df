package handler

import (
	"net/http"
)

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct{}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// Check はサービスの稼働状態を返す。認証不要で副作用を持たない。
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

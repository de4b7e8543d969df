package handler

import (
	"net/http"

	"github.com/hitoshi/fittrack/internal/model"
)

// ClassServiceInterface はクラスカタログハンドラーが必要とするサービスインターフェース。
type ClassServiceInterface interface {
	List() []model.Class
}

// ClassHandler はエクササイズクラスカタログのHTTPハンドラー。
type ClassHandler struct {
	service ClassServiceInterface
}

// NewClassHandler はClassHandlerを生成する。
func NewClassHandler(service ClassServiceInterface) *ClassHandler {
	return &ClassHandler{service: service}
}

// classListResponse はクラス一覧のレスポンス。
type classListResponse struct {
	Classes []model.Class `json:"classes"`
}

// List は提供中のクラスカタログを返す。
// GET /api/classes
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classListResponse{Classes: h.service.List()})
}

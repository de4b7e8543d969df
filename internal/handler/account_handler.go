package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/fittrack/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	List(ctx context.Context) ([]*model.Account, error)
}

// AccountHandler は管理者向けアカウント管理のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// accountListResponse はアカウント一覧のレスポンス。
type accountListResponse struct {
	Accounts []accountResponse `json:"accounts"`
}

// List は全アカウントを登録順で返す。
// GET /api/accounts （adminロール必須。ガードはルーターのミドルウェアが担う）
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := accountListResponse{Accounts: make([]accountResponse, len(accounts))}
	for i, account := range accounts {
		resp.Accounts[i] = toAccountResponse(account)
	}

	writeJSON(w, http.StatusOK, resp)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/fittrack/internal/auth"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// ロール別のログイン後遷移先。管理者はアカウント一覧、それ以外はランディングへ。
const (
	redirectAdmin   = "/admin/accounts"
	redirectDefault = "/"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, input auth.RegisterInput) (*model.Account, *model.Session, error)
	Login(ctx context.Context, email, password string) (*model.Account, *model.Session, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentAccount(ctx context.Context, sessionID string) (*model.Account, error)
}

// AuthMetrics は認証ハンドラーが記録するメトリクスのインターフェース。
type AuthMetrics interface {
	RecordRegistration()
	RecordLogin()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil可。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// --- リクエスト/レスポンス型 ---

// registerRequest は登録リクエストのボディ。
type registerRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	NationalID   string `json:"national_id"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Subscription string `json:"subscription"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// accountResponse はアカウント情報のレスポンス。
// パスワードハッシュは決して含めない。
type accountResponse struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	NationalID   string    `json:"national_id"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Subscription string    `json:"subscription"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// sessionResponse は認証成功時のレスポンス。
// redirect_toはロール別の遷移先を示すヒントで、画面側がそのまま使う。
type sessionResponse struct {
	Account    accountResponse `json:"account"`
	RedirectTo string          `json:"redirect_to"`
}

// Register は新規会員登録を処理する。
// POST /auth/register
// 成功時はセッションCookieを設定し、201とロール別遷移先を返す。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return
	}

	account, session, err := h.service.Register(r.Context(), auth.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		NationalID:   req.NationalID,
		Email:        req.Email,
		Password:     req.Password,
		Age:          req.Age,
		Gender:       req.Gender,
		Subscription: req.Subscription,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{
		Account:    toAccountResponse(account),
		RedirectTo: redirectForRole(account.Role),
	})
}

// Login はログインを処理する。
// POST /auth/login
// 資格情報の不一致は、どのフィールドが誤っていたか分からない一般的な401を返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return
	}

	account, session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin()
	}

	h.setSessionCookie(w, session.ID)
	writeJSON(w, http.StatusOK, sessionResponse{
		Account:    toAccountResponse(account),
		RedirectTo: redirectForRole(account.Role),
	})
}

// Logout はセッションを破棄する。
// POST /auth/logout
// セッションの有無によらず常に成功し、Cookieをクリアする（冪等）。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			// ログアウトは常に成功として扱う。失敗してもCookieはクリアする。
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のログインアカウント情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	account, err := h.service.CurrentAccount(r.Context(), cookie.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if account == nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieをクリアする。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectForRole はロール別のログイン後遷移先を返す。
func redirectForRole(role model.Role) string {
	if role == model.RoleAdmin {
		return redirectAdmin
	}
	return redirectDefault
}

// toAccountResponse はAccountをレスポンス型へ変換する。
func toAccountResponse(account *model.Account) accountResponse {
	return accountResponse{
		ID:           account.ID,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		NationalID:   account.NationalID,
		Email:        account.Email,
		Age:          account.Age,
		Gender:       account.Gender,
		Subscription: account.Subscription,
		Role:         string(account.Role),
		CreatedAt:    account.CreatedAt,
	}
}

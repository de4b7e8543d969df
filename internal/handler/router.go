package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/fittrack/internal/metrics"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	Metrics           middleware.HTTPStatusRecorder
	MetricsGatherer   prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthMetrics AuthMetrics
	AuthConfig  AuthHandlerConfig

	// アカウント管理
	AccountService AccountServiceInterface

	// エクササイズ
	ExerciseService ExerciseServiceInterface
	SearchService   SearchServiceInterface

	// クラスカタログ
	ClassService ClassServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序（全ルート共通）:
//
//	Logging → Recovery → SecurityHeaders → CORS
//
// 認証が必要な /api グループではさらに:
//
//	Session → RateLimit(General) → CSRF
//
// /auth のルートは未認証のためセッションミドルウェアの外に配置し、
// 登録エンドポイントのみ登録専用レート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通ミドルウェア
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.AuthMetrics)
	accountHandler := NewAccountHandler(deps.AccountService)
	exerciseHandler := NewExerciseHandler(deps.ExerciseService, deps.SearchService)
	classHandler := NewClassHandler(deps.ClassService)
	healthHandler := NewHealthHandler()

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// 認証ルート（セッション管理）
	r.Route("/auth", func(r chi.Router) {
		// POST /auth/register - アカウント登録（登録専用レート制限を追加）
		r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/register", authHandler.Register)

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// アカウント一覧（管理者のみ）
		r.Route("/api/accounts", func(r chi.Router) {
			r.Use(middleware.NewRequireRoleMiddleware(model.RoleAdmin))
			r.Get("/", accountHandler.List)
		})

		// クラスカタログ
		r.Get("/api/classes", classHandler.List)

		// エクササイズ検索・保存
		r.Route("/api/exercises", func(r chi.Router) {
			r.Get("/", exerciseHandler.ListMine)
			r.Get("/search", exerciseHandler.Search)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/", exerciseHandler.Save)
				r.Delete("/", exerciseHandler.Delete)
			})
		})
	})

	return r
}

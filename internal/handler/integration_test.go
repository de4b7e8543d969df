package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/fittrack/internal/account"
	"github.com/hitoshi/fittrack/internal/auth"
	"github.com/hitoshi/fittrack/internal/classes"
	"github.com/hitoshi/fittrack/internal/exercise"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
	"github.com/hitoshi/fittrack/internal/security"
)

// --- 統合テスト用のインメモリリポジトリ ---

// integrationState は統合テスト用の共有状態を保持する。
// 実サービス層をインメモリリポジトリの上に載せてルーター全体を検証する。
type integrationState struct {
	accounts       []*model.Account
	nextAccountID  int64
	sessions       map[string]*model.Session
	exercises      []*model.SavedExercise
	nextExerciseID int64
}

func newIntegrationState() *integrationState {
	return &integrationState{
		nextAccountID:  1,
		sessions:       make(map[string]*model.Session),
		nextExerciseID: 1,
	}
}

type fakeAccountRepo struct {
	state *integrationState
}

func (r *fakeAccountRepo) Create(ctx context.Context, a *model.Account) error {
	for _, existing := range r.state.accounts {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.NationalID == a.NationalID {
			return repository.ErrDuplicateNationalID
		}
	}
	a.ID = r.state.nextAccountID
	a.CreatedAt = time.Now()
	r.state.nextAccountID++
	r.state.accounts = append(r.state.accounts, a)
	return nil
}

func (r *fakeAccountRepo) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	for _, a := range r.state.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	for _, a := range r.state.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) FindByNationalID(ctx context.Context, nationalID string) (*model.Account, error) {
	for _, a := range r.state.accounts {
		if a.NationalID == nationalID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	return r.state.accounts, nil
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)

type fakeSessionRepo struct {
	state *integrationState
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *model.Session) error {
	r.state.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	s, ok := r.state.sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSessionRepo) DeleteByID(ctx context.Context, id string) error {
	delete(r.state.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteByAccountID(ctx context.Context, accountID int64) error {
	for id, s := range r.state.sessions {
		if s.AccountID == accountID {
			delete(r.state.sessions, id)
		}
	}
	return nil
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

type fakeSavedExerciseRepo struct {
	state *integrationState
}

func (r *fakeSavedExerciseRepo) Create(ctx context.Context, ex *model.SavedExercise) error {
	ex.ID = r.state.nextExerciseID
	ex.CreatedAt = time.Now()
	r.state.nextExerciseID++
	r.state.exercises = append(r.state.exercises, ex)
	return nil
}

func (r *fakeSavedExerciseRepo) ListByAccountID(ctx context.Context, accountID int64) ([]*model.SavedExercise, error) {
	var results []*model.SavedExercise
	for _, ex := range r.state.exercises {
		if ex.AccountID == accountID {
			results = append(results, ex)
		}
	}
	return results, nil
}

func (r *fakeSavedExerciseRepo) DeleteOwned(ctx context.Context, id, accountID int64) error {
	for i, ex := range r.state.exercises {
		if ex.ID == id && ex.AccountID == accountID {
			r.state.exercises = append(r.state.exercises[:i], r.state.exercises[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ repository.SavedExerciseRepository = (*fakeSavedExerciseRepo)(nil)

// --- 統合テスト用ルーター構築ヘルパー ---

// createIntegrationRouter は実サービス層＋インメモリリポジトリでルーターを構築する。
func createIntegrationRouter(t *testing.T, state *integrationState) http.Handler {
	t.Helper()

	accountRepo := &fakeAccountRepo{state: state}
	sessionRepo := &fakeSessionRepo{state: state}
	exerciseRepo := &fakeSavedExerciseRepo{state: state}

	authService := auth.NewService(accountRepo, sessionRepo, auth.ServiceConfig{SessionMaxAge: 86400})
	accountService := account.NewService(accountRepo)
	exerciseService := exercise.NewService(exerciseRepo, security.NewFieldSanitizer())

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rateLimiter.Stop)

	deps := &RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rateLimiter,
		CSRFConfig:        middleware.CSRFConfig{},
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthService:       authService,
		AuthConfig:        AuthHandlerConfig{SessionMaxAge: 86400},
		AccountService:    accountService,
		ExerciseService:   exerciseService,
		SearchService: &mockSearchService{
			searchFn: func(ctx context.Context, query string) []model.ExerciseResult {
				return []model.ExerciseResult{
					{ExerciseID: "1234", Name: "Push Ups", Target: "chest"},
				}
			},
		},
		ClassService: classes.NewCatalog(),
	}

	return NewRouter(deps)
}

// csrfTestToken は統合テストで使うCSRFトークン。
// ダブルサブミット方式のためCookieとヘッダーの一致のみが検証される。
const csrfTestToken = "integration-csrf-token"

// doJSON はJSONリクエストを実行するヘルパー。セッションCookieと
// 状態変更メソッド用のCSRFトークンを付加する。
func doJSON(router http.Handler, method, path, body string, sessionCookie *http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionCookie != nil {
		req.AddCookie(sessionCookie)
	}
	if !isSafeIntegrationMethod(method) {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrfTestToken})
		req.Header.Set("X-CSRF-Token", csrfTestToken)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func isSafeIntegrationMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func extractSessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

// --- エンドツーエンド統合テスト ---

// TestIntegration_MemberLifecycle は会員のライフサイクル全体を検証する。
// 登録 → 重複登録の拒否 → 誤パスワードの拒否 → ログイン →
// エクササイズ保存 → 一覧 → 削除 → ログアウト
func TestIntegration_MemberLifecycle(t *testing.T) {
	state := newIntegrationState()
	router := createIntegrationRouter(t, state)

	registerBody := `{
		"first_name": "Alon",
		"last_name": "Cohen",
		"national_id": "123456789",
		"email": "alon@example.com",
		"password": "1234",
		"age": 30,
		"gender": "male",
		"subscription": "monthly"
	}`

	// 1. 登録: 201とセッションCookieが返ること
	w := doJSON(router, http.MethodPost, "/auth/register", registerBody, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("step1: POST /auth/register status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	sessionCookie := extractSessionCookie(w)
	if sessionCookie == nil {
		t.Fatal("step1: expected session_id cookie")
	}

	var registerResp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &registerResp); err != nil {
		t.Fatalf("step1: failed to parse response: %v", err)
	}
	if registerResp.Account.Email != "alon@example.com" {
		t.Errorf("step1: email = %q, want %q", registerResp.Account.Email, "alon@example.com")
	}
	if registerResp.Account.Role != "user" {
		t.Errorf("step1: role = %q, want %q", registerResp.Account.Role, "user")
	}
	if registerResp.RedirectTo != "/" {
		t.Errorf("step1: redirect_to = %q, want %q", registerResp.RedirectTo, "/")
	}

	// 2. 同じメールで再登録: 409と重複エラーが返ること
	w = doJSON(router, http.MethodPost, "/auth/register", registerBody, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("step2: duplicate register status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "Email already registered") {
		t.Errorf("step2: unexpected body: %s", w.Body.String())
	}

	// 3. 誤パスワードでログイン: 401が返ること
	w = doJSON(router, http.MethodPost, "/auth/login", `{"email": "alon@example.com", "password": "wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("step3: login with wrong password status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(w.Body.String(), "Invalid email or password") {
		t.Errorf("step3: unexpected body: %s", w.Body.String())
	}

	// 4. 正しい資格情報でログイン: 200と新しいセッションが返ること
	w = doJSON(router, http.MethodPost, "/auth/login", `{"email": "alon@example.com", "password": "1234"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("step4: login status = %d, want %d\nbody: %s", w.Code, http.StatusOK, w.Body.String())
	}
	sessionCookie = extractSessionCookie(w)
	if sessionCookie == nil {
		t.Fatal("step4: expected session_id cookie")
	}

	// 5. エクササイズ保存: 201が返ること
	w = doJSON(router, http.MethodPost, "/api/exercises/1234", `{"name": "Push Ups", "target": "chest"}`, sessionCookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("step5: POST /api/exercises/1234 status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var savedResp savedExerciseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &savedResp); err != nil {
		t.Fatalf("step5: failed to parse response: %v", err)
	}
	if savedResp.ExerciseID != "1234" || savedResp.Name != "Push Ups" {
		t.Errorf("step5: unexpected response: %+v", savedResp)
	}

	// 6. 保存一覧: 保存したエクササイズが含まれること
	w = doJSON(router, http.MethodGet, "/api/exercises", "", sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("step6: GET /api/exercises status = %d, want %d", w.Code, http.StatusOK)
	}

	var listResp savedExerciseListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("step6: failed to parse response: %v", err)
	}
	if len(listResp.Exercises) != 1 {
		t.Fatalf("step6: len(exercises) = %d, want 1", len(listResp.Exercises))
	}

	// 7. 削除: 204が返り、一覧が空になること
	w = doJSON(router, http.MethodDelete, "/api/exercises/1", "", sessionCookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("step7: DELETE /api/exercises/1 status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doJSON(router, http.MethodGet, "/api/exercises", "", sessionCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("step7: GET /api/exercises status = %d, want %d", w.Code, http.StatusOK)
	}
	listResp = savedExerciseListResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("step7: failed to parse response: %v", err)
	}
	if len(listResp.Exercises) != 0 {
		t.Errorf("step7: len(exercises) = %d, want 0", len(listResp.Exercises))
	}

	// 8. ログアウト: 204が返り、セッションが破棄されること
	w = doJSON(router, http.MethodPost, "/auth/logout", "", sessionCookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("step8: POST /auth/logout status = %d, want %d", w.Code, http.StatusNoContent)
	}

	w = doJSON(router, http.MethodGet, "/api/exercises", "", sessionCookie)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("step8: GET /api/exercises after logout status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestIntegration_AdminAccountList は管理者限定のアカウント一覧を検証する。
// 一般会員は403、管理者セッションは全アカウントを取得できる。
func TestIntegration_AdminAccountList(t *testing.T) {
	state := newIntegrationState()
	router := createIntegrationRouter(t, state)

	// 一般会員を登録
	w := doJSON(router, http.MethodPost, "/auth/register", `{
		"first_name": "Dana",
		"last_name": "Levi",
		"national_id": "987654321",
		"email": "dana@example.com",
		"password": "secret"
	}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	userCookie := extractSessionCookie(w)

	// 一般会員のアクセスは403
	w = doJSON(router, http.MethodGet, "/api/accounts", "", userCookie)
	if w.Code != http.StatusForbidden {
		t.Fatalf("GET /api/accounts as user status = %d, want %d", w.Code, http.StatusForbidden)
	}

	// 管理者セッションを直接投入（ロールはセッション発行時のスナップショット）
	state.sessions["admin-session"] = &model.Session{
		ID:        "admin-session",
		AccountID: 999,
		Role:      model.RoleAdmin,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	adminCookie := &http.Cookie{Name: middleware.SessionCookieName, Value: "admin-session"}
	w = doJSON(router, http.MethodGet, "/api/accounts", "", adminCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/accounts as admin status = %d, want %d\nbody: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Accounts []map[string]interface{} `json:"accounts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Accounts) != 1 {
		t.Fatalf("len(accounts) = %d, want 1", len(resp.Accounts))
	}
	if resp.Accounts[0]["email"] != "dana@example.com" {
		t.Errorf("email = %v, want %q", resp.Accounts[0]["email"], "dana@example.com")
	}
}

// TestIntegration_SearchAndClasses は検索とクラスカタログを認証付きで検証する。
func TestIntegration_SearchAndClasses(t *testing.T) {
	state := newIntegrationState()
	state.sessions["session-test"] = &model.Session{
		ID:        "session-test",
		AccountID: 1,
		Role:      model.RoleUser,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	router := createIntegrationRouter(t, state)
	cookie := &http.Cookie{Name: middleware.SessionCookieName, Value: "session-test"}

	// 検索: 外部API経由の結果が返ること
	w := doJSON(router, http.MethodGet, "/api/exercises/search?q=push", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/exercises/search status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Push Ups") {
		t.Errorf("unexpected search body: %s", w.Body.String())
	}

	// クラスカタログ: 提供中のクラスが返ること
	w = doJSON(router, http.MethodGet, "/api/classes", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/classes status = %d, want %d", w.Code, http.StatusOK)
	}

	var classResp classListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &classResp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(classResp.Classes) == 0 {
		t.Error("expected at least one class in catalog")
	}
}

// TestIntegration_ProtectedEndpoints_RequireAuth は全保護エンドポイントが認証を要求することを検証する。
func TestIntegration_ProtectedEndpoints_RequireAuth(t *testing.T) {
	state := newIntegrationState()
	router := createIntegrationRouter(t, state)

	endpoints := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/accounts", ""},
		{http.MethodGet, "/api/classes", ""},
		{http.MethodGet, "/api/exercises", ""},
		{http.MethodGet, "/api/exercises/search?q=push", ""},
		{http.MethodPost, "/api/exercises/1234", `{"name": "Push Ups"}`},
		{http.MethodDelete, "/api/exercises/1", ""},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			w := doJSON(router, ep.method, ep.path, ep.body, nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s %s (no auth) status = %d, want %d", ep.method, ep.path, w.Code, http.StatusUnauthorized)
			}
		})
	}
}

// TestIntegration_CSRFRequired は状態変更メソッドがCSRFトークンを要求することを検証する。
func TestIntegration_CSRFRequired(t *testing.T) {
	state := newIntegrationState()
	state.sessions["session-test"] = &model.Session{
		ID:        "session-test",
		AccountID: 1,
		Role:      model.RoleUser,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	router := createIntegrationRouter(t, state)

	// CSRFトークンなしのPOSTは403
	req := httptest.NewRequest(http.MethodPost, "/api/exercises/1234", strings.NewReader(`{"name": "Push Ups"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-test"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("POST without CSRF token status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if !strings.Contains(w.Body.String(), "CSRF_VALIDATION_FAILED") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

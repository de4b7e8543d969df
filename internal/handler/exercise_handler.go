package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/fittrack/internal/exercise"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// ExerciseServiceInterface は保存エクササイズハンドラーが必要とするサービスインターフェース。
type ExerciseServiceInterface interface {
	Save(ctx context.Context, accountID int64, input exercise.SaveInput) (*model.SavedExercise, error)
	ListMine(ctx context.Context, accountID int64) ([]*model.SavedExercise, error)
	Delete(ctx context.Context, id, accountID int64) error
}

// SearchServiceInterface は検索ハンドラーが必要とするサービスインターフェース。
// 上流障害時も空の結果を返す（エラーを返さない）。
type SearchServiceInterface interface {
	Search(ctx context.Context, query string) []model.ExerciseResult
}

// ExerciseHandler はエクササイズ検索・保存のHTTPハンドラー。
type ExerciseHandler struct {
	service       ExerciseServiceInterface
	searchService SearchServiceInterface
}

// NewExerciseHandler はExerciseHandlerを生成する。
func NewExerciseHandler(service ExerciseServiceInterface, searchService SearchServiceInterface) *ExerciseHandler {
	return &ExerciseHandler{
		service:       service,
		searchService: searchService,
	}
}

// --- リクエスト/レスポンス型 ---

// saveExerciseRequest は保存リクエストのボディ。外部IDはパスから束縛される。
type saveExerciseRequest struct {
	Name      string `json:"name"`
	Target    string `json:"target"`
	Equipment string `json:"equipment"`
	GifURL    string `json:"gif_url"`
}

// savedExerciseResponse は保存エクササイズ1件のレスポンス。
type savedExerciseResponse struct {
	ID         int64     `json:"id"`
	ExerciseID string    `json:"exercise_id"`
	Name       string    `json:"name"`
	Target     string    `json:"target"`
	Equipment  string    `json:"equipment,omitempty"`
	GifURL     string    `json:"gif_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// savedExerciseListResponse は保存エクササイズ一覧のレスポンス。
type savedExerciseListResponse struct {
	Exercises []savedExerciseResponse `json:"exercises"`
}

// searchResponse は検索結果のレスポンス。
type searchResponse struct {
	Results []model.ExerciseResult `json:"results"`
}

// Search は外部APIでエクササイズを検索する。
// GET /api/exercises/search?q=chest
// 上流の障害は空の結果として返り、このエンドポイントが5xxになることはない。
func (h *ExerciseHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("query parameter q is required"))
		return
	}

	results := h.searchService.Search(r.Context(), query)
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

// Save は検索結果のエクササイズをセッションアカウントの保存リストへ追加する。
// POST /api/exercises/{id}
// 重複保存は許容され、常に新しい行が作られる。
func (h *ExerciseHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req saveExerciseRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return
	}

	saved, err := h.service.Save(r.Context(), identity.AccountID, exercise.SaveInput{
		ExerciseID: chi.URLParam(r, "id"),
		Name:       req.Name,
		Target:     req.Target,
		Equipment:  req.Equipment,
		GifURL:     req.GifURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSavedExerciseResponse(saved))
}

// ListMine はセッションアカウントが保存した全エクササイズを返す。
// GET /api/exercises
func (h *ExerciseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	exercises, err := h.service.ListMine(r.Context(), identity.AccountID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := savedExerciseListResponse{Exercises: make([]savedExerciseResponse, len(exercises))}
	for i, ex := range exercises {
		resp.Exercises[i] = toSavedExerciseResponse(ex)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete はセッションアカウントが所有する保存エクササイズを削除する。
// DELETE /api/exercises/{id}
// 行が存在しない・他アカウント所有の場合も204を返す（所有権スコープのno-op削除）。
func (h *ExerciseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("exercise id must be an integer"))
		return
	}

	if err := h.service.Delete(r.Context(), id, identity.AccountID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toSavedExerciseResponse はSavedExerciseをレスポンス型へ変換する。
func toSavedExerciseResponse(ex *model.SavedExercise) savedExerciseResponse {
	return savedExerciseResponse{
		ID:         ex.ID,
		ExerciseID: ex.ExerciseID,
		Name:       ex.Name,
		Target:     ex.Target,
		Equipment:  ex.Equipment,
		GifURL:     ex.GifURL,
		CreatedAt:  ex.CreatedAt,
	}
}

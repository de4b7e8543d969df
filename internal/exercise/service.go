// Package exercise は保存エクササイズのドメインロジックを提供する。
package exercise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
	"github.com/hitoshi/fittrack/internal/security"
)

// SaveInput は保存エクササイズのフォーム入力値。
// ExerciseIDはパスから、それ以外はフォームボディから束縛される。
type SaveInput struct {
	ExerciseID string
	Name       string
	Target     string
	Equipment  string
	GifURL     string
}

// Service は保存エクササイズのサービス層。
// 文字列フィールドは保存前にHTMLサニタイズされる。
type Service struct {
	exerciseRepo repository.SavedExerciseRepository
	sanitizer    security.FieldSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(exerciseRepo repository.SavedExerciseRepository, sanitizer security.FieldSanitizerService) *Service {
	return &Service{
		exerciseRepo: exerciseRepo,
		sanitizer:    sanitizer,
	}
}

// Save は検索結果のエクササイズをアカウントの保存リストへ追加する。
// 重複保存は許容され、毎回新しい行が作られる。
func (s *Service) Save(ctx context.Context, accountID int64, input SaveInput) (*model.SavedExercise, error) {
	if strings.TrimSpace(input.ExerciseID) == "" {
		return nil, model.NewValidationError("exercise id is required")
	}

	name := s.sanitizer.Sanitize(input.Name)
	if name == "" {
		return nil, model.NewValidationError("exercise name is required")
	}

	saved := &model.SavedExercise{
		AccountID:  accountID,
		ExerciseID: strings.TrimSpace(input.ExerciseID),
		Name:       name,
		Target:     s.sanitizer.Sanitize(input.Target),
		Equipment:  s.sanitizer.Sanitize(input.Equipment),
		GifURL:     strings.TrimSpace(input.GifURL),
	}

	if err := s.exerciseRepo.Create(ctx, saved); err != nil {
		// ErrAccountNotFoundはセッションガード通過後には発生しない不変条件違反。
		// 回復せずそのまま上へ返し、500として表面化させる。
		return nil, fmt.Errorf("failed to save exercise: %w", err)
	}

	slog.Info("exercise saved",
		slog.Int64("account_id", accountID),
		slog.String("exercise_id", saved.ExerciseID),
	)

	return saved, nil
}

// ListMine は指定アカウントが保存した全エクササイズを返す。
func (s *Service) ListMine(ctx context.Context, accountID int64) ([]*model.SavedExercise, error) {
	exercises, err := s.exerciseRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return exercises, nil
}

// Delete は指定行を所有権付きで削除する。
// 行が存在しない・他アカウントの所有である場合もエラーにせず正常終了する。
func (s *Service) Delete(ctx context.Context, id, accountID int64) error {
	if err := s.exerciseRepo.DeleteOwned(ctx, id, accountID); err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}

	slog.Info("exercise delete requested",
		slog.Int64("account_id", accountID),
		slog.Int64("row_id", id),
	)

	return nil
}

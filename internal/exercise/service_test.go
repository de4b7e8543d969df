package exercise

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
	"github.com/hitoshi/fittrack/internal/security"
)

// --- モック定義 ---

type mockExerciseRepo struct {
	createFn          func(ctx context.Context, exercise *model.SavedExercise) error
	listByAccountIDFn func(ctx context.Context, accountID int64) ([]*model.SavedExercise, error)
	deleteOwnedFn     func(ctx context.Context, id, accountID int64) error
}

func (m *mockExerciseRepo) Create(ctx context.Context, exercise *model.SavedExercise) error {
	if m.createFn != nil {
		return m.createFn(ctx, exercise)
	}
	return nil
}

func (m *mockExerciseRepo) ListByAccountID(ctx context.Context, accountID int64) ([]*model.SavedExercise, error) {
	if m.listByAccountIDFn != nil {
		return m.listByAccountIDFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockExerciseRepo) DeleteOwned(ctx context.Context, id, accountID int64) error {
	if m.deleteOwnedFn != nil {
		return m.deleteOwnedFn(ctx, id, accountID)
	}
	return nil
}

var _ repository.SavedExerciseRepository = (*mockExerciseRepo)(nil)

func newTestService(repo *mockExerciseRepo) *Service {
	return NewService(repo, security.NewFieldSanitizer())
}

// --- テスト ---

func TestSave_Success(t *testing.T) {
	ctx := context.Background()

	var created *model.SavedExercise
	repo := &mockExerciseRepo{
		createFn: func(ctx context.Context, exercise *model.SavedExercise) error {
			exercise.ID = 10
			created = exercise
			return nil
		},
	}

	svc := newTestService(repo)

	saved, err := svc.Save(ctx, 5, SaveInput{
		ExerciseID: "1234",
		Name:       "Push Ups",
		Target:     "chest",
		Equipment:  "body weight",
		GifURL:     "https://example.com/pushups.gif",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if saved.ID != 10 {
		t.Errorf("saved ID = %d, want 10", saved.ID)
	}
	if created.AccountID != 5 {
		t.Errorf("accountID = %d, want 5", created.AccountID)
	}
	if created.ExerciseID != "1234" {
		t.Errorf("exerciseID = %q, want %q", created.ExerciseID, "1234")
	}
	if created.Name != "Push Ups" {
		t.Errorf("name = %q, want %q", created.Name, "Push Ups")
	}
}

func TestSave_SanitizesHTMLInFields(t *testing.T) {
	ctx := context.Background()

	var created *model.SavedExercise
	repo := &mockExerciseRepo{
		createFn: func(ctx context.Context, exercise *model.SavedExercise) error {
			created = exercise
			return nil
		},
	}

	svc := newTestService(repo)

	_, err := svc.Save(ctx, 1, SaveInput{
		ExerciseID: "99",
		Name:       "<script>alert(1)</script>Bench Press",
		Target:     "<b>chest</b>",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if created.Name != "Bench Press" {
		t.Errorf("name = %q, want %q", created.Name, "Bench Press")
	}
	if created.Target != "chest" {
		t.Errorf("target = %q, want %q", created.Target, "chest")
	}
}

func TestSave_MissingExerciseID_ReturnsValidationError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&mockExerciseRepo{})

	_, err := svc.Save(ctx, 1, SaveInput{ExerciseID: "  ", Name: "Push Ups"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

func TestSave_NameEmptyAfterSanitize_ReturnsValidationError(t *testing.T) {
	// タグのみの入力はサニタイズ後に空になる
	ctx := context.Background()
	svc := newTestService(&mockExerciseRepo{})

	_, err := svc.Save(ctx, 1, SaveInput{ExerciseID: "1", Name: "<script>x</script>"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

func TestSave_DuplicateSave_IsAllowed(t *testing.T) {
	// 同じexercise_idを2回保存しても両方成功する
	ctx := context.Background()

	count := 0
	repo := &mockExerciseRepo{
		createFn: func(ctx context.Context, exercise *model.SavedExercise) error {
			count++
			exercise.ID = int64(count)
			return nil
		},
	}

	svc := newTestService(repo)
	input := SaveInput{ExerciseID: "1234", Name: "Push Ups"}

	first, err := svc.Save(ctx, 1, input)
	if err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	second, err := svc.Save(ctx, 1, input)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected two distinct rows for duplicate saves")
	}
}

func TestListMine_ReturnsAccountExercises(t *testing.T) {
	ctx := context.Background()

	repo := &mockExerciseRepo{
		listByAccountIDFn: func(ctx context.Context, accountID int64) ([]*model.SavedExercise, error) {
			return []*model.SavedExercise{
				{ID: 1, AccountID: accountID, ExerciseID: "1234", Name: "Push Ups"},
				{ID: 2, AccountID: accountID, ExerciseID: "5678", Name: "Squats"},
			}, nil
		},
	}

	svc := newTestService(repo)

	exercises, err := svc.ListMine(ctx, 7)
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if len(exercises) != 2 {
		t.Fatalf("len(exercises) = %d, want 2", len(exercises))
	}
}

func TestDelete_ScopesToOwner(t *testing.T) {
	ctx := context.Background()

	var gotID, gotAccountID int64
	repo := &mockExerciseRepo{
		deleteOwnedFn: func(ctx context.Context, id, accountID int64) error {
			gotID, gotAccountID = id, accountID
			return nil
		},
	}

	svc := newTestService(repo)

	if err := svc.Delete(ctx, 3, 9); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if gotID != 3 || gotAccountID != 9 {
		t.Errorf("DeleteOwned called with (%d, %d), want (3, 9)", gotID, gotAccountID)
	}
}

func TestDelete_NonexistentRow_Succeeds(t *testing.T) {
	// 存在しない行・他人の行の削除も正常終了する（no-op）
	ctx := context.Background()

	repo := &mockExerciseRepo{
		deleteOwnedFn: func(ctx context.Context, id, accountID int64) error {
			return nil
		},
	}

	svc := newTestService(repo)

	if err := svc.Delete(ctx, 9999, 1); err != nil {
		t.Errorf("Delete() error = %v, want nil", err)
	}
}

package account

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
)

type mockAccountRepo struct {
	listFn func(ctx context.Context) ([]*model.Account, error)
}

func (m *mockAccountRepo) Create(_ context.Context, _ *model.Account) error { return nil }

func (m *mockAccountRepo) FindByID(_ context.Context, _ int64) (*model.Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) FindByEmail(_ context.Context, _ string) (*model.Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) FindByNationalID(_ context.Context, _ string) (*model.Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) List(ctx context.Context) ([]*model.Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

var _ repository.AccountRepository = (*mockAccountRepo)(nil)

func TestList_ReturnsAccountsInRegistrationOrder(t *testing.T) {
	ctx := context.Background()

	repo := &mockAccountRepo{
		listFn: func(ctx context.Context) ([]*model.Account, error) {
			return []*model.Account{
				{ID: 1, Email: "first@example.com", Role: model.RoleAdmin},
				{ID: 2, Email: "second@example.com", Role: model.RoleUser},
			}, nil
		},
	}

	svc := NewService(repo)

	accounts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(accounts))
	}
	if accounts[0].ID != 1 || accounts[1].ID != 2 {
		t.Error("accounts should preserve repository order (ID ascending)")
	}
}

func TestList_RepositoryError_IsWrapped(t *testing.T) {
	ctx := context.Background()

	repoErr := errors.New("connection lost")
	repo := &mockAccountRepo{
		listFn: func(ctx context.Context) ([]*model.Account, error) {
			return nil, repoErr
		},
	}

	svc := NewService(repo)

	_, err := svc.List(ctx)
	if !errors.Is(err, repoErr) {
		t.Errorf("List() error = %v, want wrapped %v", err, repoErr)
	}
}

// Package account はアカウント管理のドメインロジックを提供する。
package account

import (
	"context"
	"fmt"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
)

// Service はアカウント管理のサービス層。
// 管理者ダッシュボードの一覧表示を提供する。
type Service struct {
	accountRepo repository.AccountRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(accountRepo repository.AccountRepository) *Service {
	return &Service{accountRepo: accountRepo}
}

// List は全アカウントを登録順で返す。
// 呼び出し側（ハンドラー）でadminロールのガードを通過していることが前提。
func (s *Service) List(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Package auth はパスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
)

// RegisterInput は会員登録フォームの入力値。
// Passwordは平文で受け取り、永続化前にハッシュ化される。
type RegisterInput struct {
	FirstName    string
	LastName     string
	NationalID   string
	Email        string
	Password     string
	Age          int
	Gender       string
	Subscription string
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Register は新規アカウントを作成し、セッションを発行する。
// email・national_idの重複は登録画面に表示されるAPIErrorとして返し、状態は変更しない。
// 事前チェックはあくまで最適化で、同時登録の競合はINSERT時の一意制約で解決される。
// どちらの経路でも呼び出し側には同じAPIErrorが返る。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.Account, *model.Session, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, nil, err
	}

	// 1. 事前の重複チェック（最適化のみ。一意制約が正）
	existing, err := s.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewDuplicateEmailError()
	}

	existing, err = s.accountRepo.FindByNationalID(ctx, input.NationalID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check national id: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewDuplicateNationalIDError()
	}

	// 2. パスワードをハッシュ化してアカウントを作成
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	account := &model.Account{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		NationalID:   input.NationalID,
		Email:        input.Email,
		PasswordHash: hash,
		Age:          input.Age,
		Gender:       input.Gender,
		Subscription: input.Subscription,
		Role:         model.RoleUser,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		// 事前チェック後に競合した登録が先にINSERTされた場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, model.NewDuplicateEmailError()
		}
		if errors.Is(err, repository.ErrDuplicateNationalID) {
			return nil, nil, model.NewDuplicateNationalIDError()
		}
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account registered",
		slog.Int64("account_id", account.ID),
		slog.String("role", string(account.Role)),
	)

	// 3. セッションを発行（登録成功＝ログイン状態へ遷移）
	session, err := s.createSession(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	return account, session, nil
}

// Login はメールアドレスとパスワードで認証し、セッションを発行する。
// アカウント未登録とパスワード不一致は呼び出し側から区別できない
// 同一のInvalidCredentialsエラーとして返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Account, *model.Session, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil || !VerifyPassword(account.PasswordHash, password) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("account logged in",
		slog.Int64("account_id", account.ID),
		slog.String("role", string(account.Role)),
	)

	return account, session, nil
}

// Logout はセッションを破棄する。セッションIDが空・未知の場合も成功として扱う（冪等）。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("account logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentAccount はセッションから現在のアカウントを取得する。
// セッションが無効・期限切れ、またはアカウントが存在しない場合はnilを返す。
func (s *Service) CurrentAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	account, err := s.accountRepo.FindByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return account, nil
}

// createSession はセッションを作成し永続化する。
// roleは発行時点のアカウントのスナップショットを保持する。
func (s *Service) createSession(ctx context.Context, account *model.Account) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		AccountID: account.ID,
		Role:      account.Role,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// validateRegisterInput は登録フォームの必須項目を検証する。
func validateRegisterInput(input RegisterInput) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"first_name", input.FirstName},
		{"last_name", input.LastName},
		{"national_id", input.NationalID},
		{"email", input.Email},
		{"password", input.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/fittrack/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成し、採番されたIDとcreated_atを書き戻す。
	// email・national_idの一意制約違反はErrDuplicateEmail / ErrDuplicateNationalIDを返す。
	// 事前の重複チェックは最適化にすぎず、一意制約が正となる。
	Create(ctx context.Context, account *model.Account) error

	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Account, error)

	// FindByEmail はメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// FindByNationalID は国民IDでアカウントを検索する。見つからない場合はnilを返す。
	FindByNationalID(ctx context.Context, nationalID string) (*model.Account, error)

	// List は全アカウントを登録順（ID昇順）で返す。管理者の一覧画面用。
	List(ctx context.Context) ([]*model.Account, error)
}

// SavedExerciseRepository は保存エクササイズの永続化インターフェース。
type SavedExerciseRepository interface {
	// Create は保存エクササイズを作成し、採番されたIDとcreated_atを書き戻す。
	// 存在しないaccount_idへの外部キー違反はErrAccountNotFoundを返す。
	// (account_id, exercise_id) の重複は許容される。
	Create(ctx context.Context, exercise *model.SavedExercise) error

	// ListByAccountID は指定アカウントが保存した全エクササイズを返す。
	ListByAccountID(ctx context.Context, accountID int64) ([]*model.SavedExercise, error)

	// DeleteOwned は行IDと所有アカウントIDの両方が一致する場合のみ削除する。
	// 一致する行がない場合（他人の行・存在しない行）はエラーにせず何もしない。
	DeleteOwned(ctx context.Context, id, accountID int64) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。存在しないIDでもエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByAccountID は指定アカウントの全セッションを削除する。
	DeleteByAccountID(ctx context.Context, accountID int64) error
}

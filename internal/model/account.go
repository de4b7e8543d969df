// Package model はドメインモデルを定義する。
package model

import "time"

// Role はアカウントの権限区分を表す。
type Role string

const (
	// RoleUser は一般会員を表す。
	RoleUser Role = "user"
	// RoleAdmin は管理者を表す。管理画面でアカウント一覧を閲覧できる。
	RoleAdmin Role = "admin"
)

// Valid はroleが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account は登録済みの会員・管理者を表す。
// PasswordHashにはbcryptハッシュのみを保持し、平文パスワードは
// いかなる経路でも永続化・ログ出力しない。
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	NationalID   string
	Email        string
	PasswordHash string
	Age          int
	Gender       string
	Subscription string
	Role         Role
	CreatedAt    time.Time
}

// Session はアカウントのログインセッションを表す。
// Roleは発行時点のスナップショット。アカウントのroleは本スコープでは
// 更新されないため、リクエストごとの再問い合わせは行わない。
type Session struct {
	ID        string
	AccountID int64
	Role      Role
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity はセッションミドルウェアがリクエストコンテキストに注入する
// 認証済みアカウントの識別情報。ハンドラーへ明示的な値として渡される。
type Identity struct {
	AccountID int64
	Role      Role
}

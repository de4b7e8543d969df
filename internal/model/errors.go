// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeDuplicateNationalID = "DUPLICATE_NATIONAL_ID"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeValidation          = "VALIDATION"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
)

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
// Messageの文言は登録画面にそのまま表示される。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "Email already registered",
		Category: "conflict",
		Action:   "Log in with this email or register with a different one.",
	}
}

// NewDuplicateNationalIDError は国民ID重複エラーを生成する。
func NewDuplicateNationalIDError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateNationalID,
		Message:  "National ID already registered",
		Category: "conflict",
		Action:   "Check the national ID you entered.",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メール未登録とパスワード誤りを呼び出し側が区別できないよう、
// どちらの場合も同一の文言を返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: "auth",
		Action:   "Check your email and password and try again.",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication required",
		Category: "auth",
		Action:   "Log in and try again.",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "You do not have permission to access this resource",
		Category: "auth",
		Action:   "Contact an administrator if you believe this is a mistake.",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Correct the highlighted fields and resubmit.",
	}
}

// NewAccountNotFoundError はアカウントが見つからない場合のエラーを生成する。
func NewAccountNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountNotFound,
		Message:  "Account not found",
		Category: "auth",
		Action:   "Log in again.",
	}
}

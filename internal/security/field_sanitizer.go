// Package security はアプリケーションのセキュリティ機能を提供する。
//
// FieldSanitizer は保存エクササイズのフォーム入力（名前・部位・器具）から
// HTMLタグを取り除き、保存した文字列が後段の画面でそのまま描画されても
// XSSにならないことを保証する。bluemondayのStrictPolicyを使用し、
// タグを一切許可しない。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FieldSanitizerService はフォーム入力フィールドのサニタイズ機能のインターフェース。
type FieldSanitizerService interface {
	// Sanitize は入力文字列から全てのHTMLタグを除去し、前後の空白を取り除く。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// fieldSanitizer はFieldSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフで、リクエスト間で共有できる。
type fieldSanitizer struct {
	policy *bluemonday.Policy
}

// NewFieldSanitizer はFieldSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグ・属性を除去し、テキストのみを残す。
func NewFieldSanitizer() *fieldSanitizer {
	return &fieldSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力文字列から全てのHTMLタグを除去し、前後の空白を取り除く。
func (s *fieldSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ FieldSanitizerService = (*fieldSanitizer)(nil)

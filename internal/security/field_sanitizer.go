// Package security はアプリケーションのセキュリティ機能を提供する。
//
// FieldSanitizerService はプロフィールフォームから受け取ったテキストを
// サニタイズし、保存値にマークアップが混入することを防ぐ。
// bluemondayのStrictPolicyを使い、タグを一切許可しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FieldSanitizerService はフォーム入力値のサニタイズ機能のインターフェースを定義する。
// プロフィールの保存前に全フィールドへ適用される。
type FieldSanitizerService interface {
	// SanitizeField は入力テキストからHTMLタグを全て除去し、
	// 前後の空白を取り除いたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeField(raw string) string
}

// fieldSanitizer はFieldSanitizerServiceの実装。
// StrictPolicyはスレッドセーフなため全リクエストで共有できる。
type fieldSanitizer struct {
	policy *bluemonday.Policy
}

// NewFieldSanitizer はFieldSanitizerServiceの新しいインスタンスを生成する。
// タグを一切許可しないStrictPolicyを使用する。
func NewFieldSanitizer() *fieldSanitizer {
	return &fieldSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeField は入力テキストをサニタイズしてプレーンテキストを返す。
// StrictPolicyはタグ除去後にエンティティをエスケープするため、
// "O'Brien" のような通常のテキストが &#39; のまま保存されないよう
// エスケープを戻してから返す。
func (s *fieldSanitizer) SanitizeField(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TitleSanitizerService はユーザー入力のtodoタイトルをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// タイトルはプレーンテキストとして扱い、HTMLタグを一切許可しない。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TitleSanitizerService はtodoタイトルのサニタイズ機能のインターフェースを定義する。
// タイトルの保存前（作成および変更時）に使用される。
type TitleSanitizerService interface {
	// Sanitize はタイトルをサニタイズしてプレーンテキストを返す。
	// 全てのHTMLタグを除去し、前後の空白を取り除く。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawTitle string) string
}

// titleSanitizer はTitleSanitizerServiceの実装。
// bluemondayの厳格ポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type titleSanitizer struct {
	policy *bluemonday.Policy
}

// NewTitleSanitizer はTitleSanitizerServiceの新しいインスタンスを生成する。
// タグを一切許可しないbluemondayのStrictPolicyを使用する。
func NewTitleSanitizer() *titleSanitizer {
	return &titleSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はタイトルをサニタイズしてプレーンテキストを返す。
func (s *titleSanitizer) Sanitize(rawTitle string) string {
	return strings.TrimSpace(s.policy.Sanitize(rawTitle))
}

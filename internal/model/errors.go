package model

import (
	"fmt"
	"net/http"
)

// APIError は統一エラーフォーマットを表す。
// HTTPステータスとユーザー向けメッセージを保持し、
// ハンドラー層で一度だけレスポンスエンベロープにマッピングされる。
type APIError struct {
	Code    string // エラーコード
	Status  int    // HTTPステータスコード
	Message string // ユーザー向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodePasswordIncorrect = "PASSWORD_INCORRECT"
	ErrCodeTokenInvalid      = "TOKEN_INVALID"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeEntityNotFound    = "ENTITY_NOT_FOUND"
	ErrCodeEntityDuplicated  = "ENTITY_DUPLICATED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
// messageには違反したすべてのルールを結合した文字列を渡す。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewPasswordIncorrectError はパスワード不一致エラーを生成する。
func NewPasswordIncorrectError() *APIError {
	return &APIError{
		Code:    ErrCodePasswordIncorrect,
		Status:  http.StatusBadRequest,
		Message: "パスワードが一致しません。",
	}
}

// NewTokenInvalidError はトークン無効エラーを生成する。
// 欠落・改ざん・期限切れのいずれもこのエラーで表し、呼び出し側からは区別できない。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenInvalid,
		Status:  http.StatusUnauthorized,
		Message: "トークンが有効ではありません。",
	}
}

// NewForbiddenError はロール不一致エラーを生成する。
// 有効な認証情報を持つが、ルートの要求ロールを満たさない場合にのみ使う。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Status:  http.StatusForbidden,
		Message: "この操作を行う権限がありません。",
	}
}

// NewEntityNotFoundError はエンティティ未検出エラーを生成する。
// 他ユーザー所有のリソースへのアクセスも未検出として扱う（所有権の漏えい防止）。
func NewEntityNotFoundError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeEntityNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// NewEntityDuplicatedError はエンティティ重複エラーを生成する。
func NewEntityDuplicatedError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeEntityDuplicated,
		Status:  http.StatusConflict,
		Message: message,
	}
}

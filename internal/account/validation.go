package account

import (
	"regexp"
	"strings"
)

// 入力検証の正規表現。
// パスワードはGoの正規表現が先読みを持たないため、個別条件で検証する。
var (
	emailPattern  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	userIDPattern = regexp.MustCompile(`^[a-z0-9]{7,}$`)
)

const passwordSpecialChars = "@$!%*?&"

// SignupInput はサインアップのリクエスト入力。
type SignupInput struct {
	Email    string `json:"email"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// validateSignup はサインアップ入力の全ルールを検証し、
// 違反メッセージのスライスを返す。違反がなければ空を返す。
func validateSignup(input SignupInput) []string {
	var violations []string

	if !emailPattern.MatchString(input.Email) {
		violations = append(violations, "メールアドレスの形式が正しくありません。")
	}
	if !userIDPattern.MatchString(input.UserID) {
		violations = append(violations, "ユーザーIDは英小文字と数字のみの7文字以上で入力してください。")
	}
	violations = append(violations, validatePassword(input.Password)...)

	return violations
}

// validatePassword はパスワードの複雑性要件を検証する。
func validatePassword(password string) []string {
	var violations []string

	if len(password) < 8 {
		violations = append(violations, "パスワードは8文字以上で入力してください。")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, c):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		violations = append(violations, "パスワードには英大文字・英小文字・数字・記号（@$!%*?&）をそれぞれ1文字以上含めてください。")
	}

	return violations
}

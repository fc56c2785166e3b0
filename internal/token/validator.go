package token

import "time"

// Identity は検証済みトークンから導出したリクエストスコープの身元情報を表す。
// リクエストの処理中のみ有効で、永続化してはならない。
type Identity struct {
	Subject string
	Role    string
}

// Validator はトークンの構造・署名・有効期限をまとめて検証する。
//
// 身元情報は検証に成功した場合にのみ得られる。解読エラーはすべて握りつぶし、
// 改ざん・期限切れ・形式不正のトークンを「存在しない」ものと同一に扱う
// （フェイルクローズ方針）。
type Validator struct {
	codec *Codec
	now   func() time.Time
}

// NewValidator はValidatorを生成する。
func NewValidator(codec *Codec) *Validator {
	return &Validator{
		codec: codec,
		now:   time.Now,
	}
}

// SetClock は時刻取得関数を差し替える。期限切れ挙動のテスト用。
func (v *Validator) SetClock(now func() time.Time) {
	v.now = now
}

// Validate はトークンを検証し、有効な場合にのみIdentityを返す。
// 有効の条件は「署名が現在の秘密鍵で検証でき、かつ現在時刻が有効期限より前」。
// 無効の理由（形式不正・署名不一致・期限切れ）は呼び出し側から区別できない。
func (v *Validator) Validate(tokenString string) (Identity, bool) {
	claims, err := v.codec.Decode(tokenString)
	if err != nil {
		return Identity{}, false
	}

	if !v.now().Before(claims.ExpiresAt) {
		return Identity{}, false
	}

	return Identity{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, true
}

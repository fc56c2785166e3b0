// Package token は自己完結型の署名付きIDトークンの発行と検証を提供する。
//
// トークンは発行時にプロセス全体の秘密鍵でHMAC署名され、サーバー側には
// 一切保存されない。失効は発行から7日の経過のみで判定する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime はトークンの有効期間。発行から7日で失効する（固定値）。
const Lifetime = 7 * 24 * time.Hour

var (
	// ErrTokenMalformed は構造的に解析できないトークンを表す。
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrSignatureInvalid は署名が現在の秘密鍵と一致しないトークンを表す。
	ErrSignatureInvalid = errors.New("token signature is invalid")
)

// ParseAlgorithm は設定値の署名アルゴリズム識別子をjwt.SigningMethodに変換する。
// 対称鍵（HMAC系）のみをサポートする。
func ParseAlgorithm(name string) (jwt.SigningMethod, error) {
	switch name {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("unsupported signing algorithm: %s", name)
}

// Claims はトークンにエンコードされる身元情報を表す。
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// jwtClaims はワイヤ上のクレーム表現。roles クレーム名は既存クライアントとの互換のため。
type jwtClaims struct {
	jwt.RegisteredClaims
	Roles string `json:"roles"`
}

// Codec はトークンの発行（署名）と解読（署名検証）を行う。
// 発行と検証は同一のアルゴリズム・秘密鍵を共有する。副作用は持たない。
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewCodec はCodecを生成する。
// methodはParseAlgorithmで得た署名アルゴリズムを渡す。
func NewCodec(secret string, method jwt.SigningMethod) *Codec {
	return &Codec{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}
}

// SetClock は時刻取得関数を差し替える。期限切れ挙動のテスト用。
func (c *Codec) SetClock(now func() time.Time) {
	c.now = now
}

// Issue は指定のsubjectとroleを持つ署名付きトークンを発行する。
// 有効期限は発行時刻からLifetime後に固定される。
func (c *Codec) Issue(subject, role string) (string, error) {
	now := c.now()
	claims := &jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
		Roles: role,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode はトークンを解読しClaimsを返す。
// 構造的に解析できない場合はErrTokenMalformed、署名が一致しない場合は
// ErrSignatureInvalidを返す。有効期限の判定はここでは行わない（Validatorの責務）。
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	parsed := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, parsed, c.keyFunc,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			// 署名不一致・アルゴリズム不一致はすべて署名エラーとして扱う
			return nil, ErrSignatureInvalid
		}
	}

	claims := &Claims{
		Subject: parsed.Subject,
		Role:    parsed.Roles,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

// keyFunc は解読時に検証鍵を返す。発行時と同じ秘密鍵を使う。
func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	return c.secret, nil
}

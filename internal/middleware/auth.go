package middleware

import (
	"net/http"
	"strings"

	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/token"
)

// bearerPrefix はAuthorizationヘッダーのトークン種別プレフィックス。
const bearerPrefix = "Bearer "

// TokenValidator はトークン検証に必要なインターフェース。
// token.Validatorの部分集合として定義する。
type TokenValidator interface {
	Validate(tokenString string) (token.Identity, bool)
}

// AuthMetrics は認証・認可の拒否を記録するインターフェース。
// nilを渡した場合は記録しない。
type AuthMetrics interface {
	RecordAuthRejection(reason string)
}

// NewAuthMiddleware はリクエストごとに1回実行される認証ゲートを返す。
//
// Authorizationヘッダーからトークンを取り出して検証し、
//   - トークンなし: 匿名のまま後続へ進める（可否は認可ポリシーが判断する）
//   - トークンあり・無効: 401で即座に拒否し、ハンドラーは実行しない
//   - トークンあり・有効: 検証済み身元情報をコンテキストに注入して後続へ進める
//
// 身元情報はこのリクエストの処理中にのみ存在し、リクエスト間で共有されない。
func NewAuthMiddleware(validator TokenValidator, metrics AuthMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, present := extractBearerToken(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := validator.Validate(tokenString)
			if !ok {
				if metrics != nil {
					metrics.RecordAuthRejection("invalid_token")
				}
				WriteErrorResponse(w, model.NewTokenInvalidError())
				return
			}

			// ゲートより上流のロギングミドルウェアからも参照できるよう記録する
			recordIdentity(r.Context(), identity)

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーが存在しない、またはBearer形式でない場合はpresent=falseを返す。
func extractBearerToken(r *http.Request) (tokenString string, present bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(header, bearerPrefix), true
}

// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"

	"github.com/hitoshi/planman/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに検証済み身元情報を格納するためのキー。
var identityContextKey = contextKey("identity")

// ContextWithIdentity はコンテキストに検証済み身元情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity token.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext はリクエストコンテキストから検証済み身元情報を取得する。
// 認証ゲートを有効なトークン付きで通過したリクエストでのみ存在する。
func IdentityFromContext(ctx context.Context) (token.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(token.Identity)
	if !ok || identity.Subject == "" {
		return token.Identity{}, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// identityHolderKey は確定した身元情報をゲートより上流のミドルウェアへ
// 伝えるためのホルダーのキー。
var identityHolderKey = contextKey("identityHolder")

// identityHolder は認証ゲートが確定した身元情報の入れ物。
// ロギングミドルウェアがリクエスト処理後に読み取る。
type identityHolder struct {
	identity token.Identity
	ok       bool
}

// contextWithIdentityHolder は空のホルダーをコンテキストに注入する。
func contextWithIdentityHolder(ctx context.Context) (context.Context, *identityHolder) {
	holder := &identityHolder{}
	return context.WithValue(ctx, identityHolderKey, holder), holder
}

// recordIdentity はコンテキストにホルダーがあれば身元情報を書き込む。
func recordIdentity(ctx context.Context, identity token.Identity) {
	if holder, ok := ctx.Value(identityHolderKey).(*identityHolder); ok {
		holder.identity = identity
		holder.ok = true
	}
}

// Package model はドメインモデルを定義する。
package model

import "time"

// RoleUser は一般ユーザーのロール。このシステムのロールはUSERのみ。
const RoleUser = "USER"

// User はサービス利用ユーザーを表す。
// UserIDはログインに使う一意のハンドル、IDは内部識別用のUUID。
type User struct {
	ID           string
	UserID       string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

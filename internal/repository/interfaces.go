// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUserID は指定ユーザーIDのユーザーを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// ユーザーIDまたはメールアドレスが既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteWithTodos はユーザーと所有する全todoを同一トランザクションで削除する。
	// ユーザーが存在しない場合はErrNotFoundを返す。
	DeleteWithTodos(ctx context.Context, userID string) error
}

// TodoRepository はtodoデータの永続化インターフェース。
// 読み書きは全て所有者スコープで行い、他ユーザーの行には一切触れない。
type TodoRepository interface {
	// Create はtodoを作成し、採番されたIDと作成日時をtodoに書き戻す。
	Create(ctx context.Context, todo *model.Todo) error

	// ListByOwnerAndDate は指定所有者・指定日のtodo一覧をID昇順で返す。
	ListByOwnerAndDate(ctx context.Context, userID string, date time.Time) ([]*model.Todo, error)

	// ListByOwnerAndDateRange は指定所有者の[from, to)範囲のtodo一覧を返す。
	ListByOwnerAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*model.Todo, error)

	// CountByOwnerAndDone は指定所有者の完了状態別のtodo件数を返す。
	CountByOwnerAndDone(ctx context.Context, userID string, isDone bool) (int, error)

	// ToggleDone は指定IDかつ指定所有者のtodoの完了状態を反転する。
	// 対象が存在しない場合はErrNotFoundを返す。
	ToggleDone(ctx context.Context, id int64, userID string) error

	// UpdateTitle は指定IDかつ指定所有者のtodoのタイトルを変更する。
	// 対象が存在しない場合はErrNotFoundを返す。
	UpdateTitle(ctx context.Context, id int64, userID string, title string) error

	// Delete は指定IDかつ指定所有者のtodoを削除する。
	// 対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id int64, userID string) error
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/planman/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したtodoリポジトリ。
// 全てのクエリは所有者（user_id）でスコープされる。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// Create はtodoを作成し、採番されたIDと作成日時をtodoに書き戻す。
// 所有者のユーザーが存在しない場合はErrNotFoundを返す。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (user_id, date, title, category, is_done, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		todo.UserID, todo.Date, todo.Title, todo.Category, todo.IsDone, todo.CreatedAt, todo.UpdatedAt,
	).Scan(&todo.ID)
	if err != nil {
		// 退会済みユーザーの有効期限内トークンで作成された場合に起こり得る
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

// ListByOwnerAndDate は指定所有者・指定日のtodo一覧をID昇順で返す。
func (r *PostgresTodoRepo) ListByOwnerAndDate(ctx context.Context, userID string, date time.Time) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, title, category, is_done, created_at, updated_at
		 FROM todos WHERE user_id = $1 AND date = $2
		 ORDER BY id`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos by date: %w", err)
	}
	defer rows.Close()

	return scanTodos(rows)
}

// ListByOwnerAndDateRange は指定所有者の[from, to)範囲のtodo一覧を返す。
func (r *PostgresTodoRepo) ListByOwnerAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, title, category, is_done, created_at, updated_at
		 FROM todos WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date, id`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos by date range: %w", err)
	}
	defer rows.Close()

	return scanTodos(rows)
}

// CountByOwnerAndDone は指定所有者の完了状態別のtodo件数を返す。
func (r *PostgresTodoRepo) CountByOwnerAndDone(ctx context.Context, userID string, isDone bool) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM todos WHERE user_id = $1 AND is_done = $2`,
		userID, isDone,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return count, nil
}

// ToggleDone は指定IDかつ指定所有者のtodoの完了状態を反転する。
// 対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresTodoRepo) ToggleDone(ctx context.Context, id int64, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET is_done = NOT is_done, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to toggle todo: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateTitle は指定IDかつ指定所有者のtodoのタイトルを変更する。
// 対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresTodoRepo) UpdateTitle(ctx context.Context, id int64, userID string, title string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET title = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		id, userID, title,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo title: %w", err)
	}
	return requireRowAffected(result)
}

// Delete は指定IDかつ指定所有者のtodoを削除する。
// 対象が存在しない場合はErrNotFoundを返す。
func (r *PostgresTodoRepo) Delete(ctx context.Context, id int64, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return requireRowAffected(result)
}

// scanTodos はクエリ結果の全行をスキャンする。
func scanTodos(rows *sql.Rows) ([]*model.Todo, error) {
	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Date, &todo.Title, &todo.Category,
			&todo.IsDone, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

// requireRowAffected は更新系クエリが1行以上に影響したことを確認する。
func requireRowAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)

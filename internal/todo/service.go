// Package todo は予定（todo）管理のドメインロジックを提供する。
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/repository"
)

// DateLayout はリクエストで使う日付形式。
const DateLayout = "2006-01-02"

// TitleSanitizer はタイトルのサニタイズインターフェース。
type TitleSanitizer interface {
	Sanitize(rawTitle string) string
}

// CreateInput はtodo作成のリクエスト入力。
type CreateInput struct {
	Date     string `json:"date"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// DayCount は1日分の完了・未完了件数。
type DayCount struct {
	DoneCount    int `json:"doneCount"`
	NotDoneCount int `json:"notDoneCount"`
}

// Service はtodo管理のサービス層。
// 全ての操作は呼び出し元の検証済み身元（userID）でスコープされ、
// 他ユーザーのtodoには一切触れない。
type Service struct {
	todoRepo  repository.TodoRepository
	userRepo  repository.UserRepository
	sanitizer TitleSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository, userRepo repository.UserRepository, sanitizer TitleSanitizer) *Service {
	return &Service{
		todoRepo:  todoRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// SetClock は現在時刻の取得関数を差し替える。テスト用。
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Create は指定ユーザーのtodoを作成する。
// タイトルはサニタイズされ、空になった場合は検証エラーを返す。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Todo, error) {
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	category := model.Category(input.Category)
	if !category.IsValid() {
		return nil, model.NewValidationError("カテゴリが正しくありません。")
	}

	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewValidationError("タイトルを入力してください。")
	}

	now := s.now()
	todo := &model.Todo{
		UserID:    userID,
		Date:      date,
		Title:     title,
		Category:  category,
		IsDone:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewEntityNotFoundError("ユーザーが見つかりません。")
		}
		return nil, fmt.Errorf("todoの作成に失敗しました: %w", err)
	}

	slog.Info("todoを作成しました",
		slog.String("user_id", userID),
		slog.Int64("todo_id", todo.ID),
	)

	return todo, nil
}

// ListOneDay は指定ユーザー・指定日のtodo一覧を返す。
// ユーザーが存在しない（退会済みなど）場合は未検出エラーを返す。
func (s *Service) ListOneDay(ctx context.Context, userID string, dateString string) ([]*model.Todo, error) {
	date, err := parseDate(dateString)
	if err != nil {
		return nil, err
	}

	if err := s.resolveOwner(ctx, userID); err != nil {
		return nil, err
	}

	todos, err := s.todoRepo.ListByOwnerAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("todo一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// OneMonth は指定ユーザー・指定月の日別の完了・未完了件数を返す。
// 月の全ての日をキーに含み、todoのない日は両カウント0で返す。
func (s *Service) OneMonth(ctx context.Context, userID string, year int, month time.Month) (map[int]DayCount, error) {
	if month < time.January || month > time.December {
		return nil, model.NewValidationError("月の指定が正しくありません。")
	}

	if err := s.resolveOwner(ctx, userID); err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	todos, err := s.todoRepo.ListByOwnerAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("月間todoの取得に失敗しました: %w", err)
	}

	daysInMonth := to.AddDate(0, 0, -1).Day()
	counts := make(map[int]DayCount, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		counts[day] = DayCount{}
	}

	for _, todo := range todos {
		day := todo.Date.Day()
		count := counts[day]
		if todo.IsDone {
			count.DoneCount++
		} else {
			count.NotDoneCount++
		}
		counts[day] = count
	}

	return counts, nil
}

// CountNotDone は指定ユーザーの未完了todoの総数を返す。
// ユーザーが存在しない（退会済みなど）場合は未検出エラーを返す。
func (s *Service) CountNotDone(ctx context.Context, userID string) (int, error) {
	if err := s.resolveOwner(ctx, userID); err != nil {
		return 0, err
	}

	count, err := s.todoRepo.CountByOwnerAndDone(ctx, userID, false)
	if err != nil {
		return 0, fmt.Errorf("未完了件数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ToggleDone は指定todoの完了状態を反転する。
// 存在しない、または他ユーザー所有の場合は未検出エラーを返す。
func (s *Service) ToggleDone(ctx context.Context, userID string, todoID int64) error {
	if err := s.todoRepo.ToggleDone(ctx, todoID, userID); err != nil {
		return mapTodoError(err)
	}
	return nil
}

// Rename は指定todoのタイトルを変更する。
// タイトルはサニタイズされ、空になった場合は検証エラーを返す。
// 存在しない、または他ユーザー所有の場合は未検出エラーを返す。
func (s *Service) Rename(ctx context.Context, userID string, todoID int64, rawTitle string) error {
	title := s.sanitizer.Sanitize(rawTitle)
	if title == "" {
		return model.NewValidationError("タイトルを入力してください。")
	}

	if err := s.todoRepo.UpdateTitle(ctx, todoID, userID, title); err != nil {
		return mapTodoError(err)
	}
	return nil
}

// Delete は指定todoを削除する。
// 存在しない、または他ユーザー所有の場合は未検出エラーを返す。
func (s *Service) Delete(ctx context.Context, userID string, todoID int64) error {
	if err := s.todoRepo.Delete(ctx, todoID, userID); err != nil {
		return mapTodoError(err)
	}
	return nil
}

// resolveOwner は操作主体のユーザーが存在することを確認する。
// 退会済みユーザーの有効期限内トークンによる参照を未検出として扱う。
func (s *Service) resolveOwner(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewEntityNotFoundError("ユーザーが見つかりません。")
	}
	return nil
}

// parseDate はYYYY-MM-DD形式の日付文字列を解析する。
func parseDate(dateString string) (time.Time, error) {
	date, err := time.Parse(DateLayout, dateString)
	if err != nil {
		return time.Time{}, model.NewValidationError("日付はYYYY-MM-DD形式で指定してください。")
	}
	return date, nil
}

// mapTodoError はリポジトリのエラーをAPIエラーに変換する。
func mapTodoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewEntityNotFoundError("todoが見つかりません。")
	}
	return fmt.Errorf("todoの更新に失敗しました: %w", err)
}

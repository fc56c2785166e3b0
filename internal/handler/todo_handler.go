package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/todo"
)

// monthLayout はoneMonthエンドポイントで使う年月形式。
const monthLayout = "2006-01"

// TodoServiceInterface はtodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	Create(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error)
	ListOneDay(ctx context.Context, userID string, dateString string) ([]*model.Todo, error)
	OneMonth(ctx context.Context, userID string, year int, month time.Month) (map[int]todo.DayCount, error)
	CountNotDone(ctx context.Context, userID string) (int, error)
	ToggleDone(ctx context.Context, userID string, todoID int64) error
	Rename(ctx context.Context, userID string, todoID int64, title string) error
	Delete(ctx context.Context, userID string, todoID int64) error
}

// TodoHandler はtodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{
		service: service,
	}
}

// todoResponse はtodo 1件分のレスポンスデータ。
type todoResponse struct {
	TodoID   int64  `json:"todoId"`
	Date     string `json:"date"`
	Title    string `json:"title"`
	Category string `json:"category"`
	IsDone   bool   `json:"isDone"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		TodoID:   t.ID,
		Date:     t.Date.Format(todo.DateLayout),
		Title:    t.Title,
		Category: string(t.Category),
		IsDone:   t.IsDone,
	}
}

// renameRequest はタイトル変更のリクエストボディ。
type renameRequest struct {
	Title string `json:"title"`
}

// requireIdentity はコンテキストから検証済み身元を取り出す。
// 認可ポリシーを通過したリクエストでは必ず存在する。
func requireIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, model.NewTokenInvalidError())
		return "", false
	}
	return identity.Subject, true
}

// parseTodoID はURLパラメータのtodoIdを解析する。
func parseTodoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	todoID, err := strconv.ParseInt(chi.URLParam(r, "todoId"), 10, 64)
	if err != nil {
		writeErrorResponse(w, model.NewValidationError("todoIdが正しくありません。"))
		return 0, false
	}
	return todoID, true
}

// Create はtodoを作成する。
// POST /api/todo
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var input todo.CreateInput
	if !decodeJSONBody(w, r, &input) {
		return
	}

	created, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusCreated, toTodoResponse(created), "todoを作成しました。")
}

// ListOneDay は指定日のtodo一覧を返す。
// GET /api/todo/oneDay/{date}
func (h *TodoHandler) ListOneDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	todos, err := h.service.ListOneDay(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		responses = append(responses, toTodoResponse(t))
	}

	writeSuccessResponse(w, http.StatusOK, responses, "1日分のtodoを取得しました。")
}

// OneMonth は指定月の日別完了・未完了件数を返す。
// GET /api/todo/oneMonth/{date}（dateはYYYY-MM形式）
func (h *TodoHandler) OneMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	yearMonth, err := time.Parse(monthLayout, chi.URLParam(r, "date"))
	if err != nil {
		writeErrorResponse(w, model.NewValidationError("年月はYYYY-MM形式で指定してください。"))
		return
	}

	counts, err := h.service.OneMonth(r.Context(), userID, yearMonth.Year(), yearMonth.Month())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, counts, "1ヶ月分の集計を取得しました。")
}

// CountNotDone は未完了todoの総数を返す。
// GET /api/todo/notDone/count
func (h *TodoHandler) CountNotDone(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	count, err := h.service.CountNotDone(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, count, "未完了のtodo件数を取得しました。")
}

// ToggleDone はtodoの完了状態を反転する。
// PUT /api/todo/checking/{todoId}
func (h *TodoHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	if err := h.service.ToggleDone(r.Context(), userID, todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil, "todoの完了状態を変更しました。")
}

// Rename はtodoのタイトルを変更する。
// PUT /api/todo/title/{todoId}
func (h *TodoHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.service.Rename(r.Context(), userID, todoID, req.Title); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil, "todoのタイトルを変更しました。")
}

// Delete はtodoを削除する。
// DELETE /api/todo/{todoId}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	todoID, ok := parseTodoID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil, "todoを削除しました。")
}

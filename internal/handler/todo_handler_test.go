package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/todo"
)

// --- モック定義 ---

// mockTodoService はTodoServiceInterfaceのモック実装。
type mockTodoService struct {
	createFn       func(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error)
	listOneDayFn   func(ctx context.Context, userID string, dateString string) ([]*model.Todo, error)
	oneMonthFn     func(ctx context.Context, userID string, year int, month time.Month) (map[int]todo.DayCount, error)
	countNotDoneFn func(ctx context.Context, userID string) (int, error)
	toggleDoneFn   func(ctx context.Context, userID string, todoID int64) error
	renameFn       func(ctx context.Context, userID string, todoID int64, title string) error
	deleteFn       func(ctx context.Context, userID string, todoID int64) error
}

func (m *mockTodoService) Create(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return &model.Todo{ID: 1, UserID: userID}, nil
}

func (m *mockTodoService) ListOneDay(ctx context.Context, userID string, dateString string) ([]*model.Todo, error) {
	if m.listOneDayFn != nil {
		return m.listOneDayFn(ctx, userID, dateString)
	}
	return nil, nil
}

func (m *mockTodoService) OneMonth(ctx context.Context, userID string, year int, month time.Month) (map[int]todo.DayCount, error) {
	if m.oneMonthFn != nil {
		return m.oneMonthFn(ctx, userID, year, month)
	}
	return map[int]todo.DayCount{}, nil
}

func (m *mockTodoService) CountNotDone(ctx context.Context, userID string) (int, error) {
	if m.countNotDoneFn != nil {
		return m.countNotDoneFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockTodoService) ToggleDone(ctx context.Context, userID string, todoID int64) error {
	if m.toggleDoneFn != nil {
		return m.toggleDoneFn(ctx, userID, todoID)
	}
	return nil
}

func (m *mockTodoService) Rename(ctx context.Context, userID string, todoID int64, title string) error {
	if m.renameFn != nil {
		return m.renameFn(ctx, userID, todoID, title)
	}
	return nil
}

func (m *mockTodoService) Delete(ctx context.Context, userID string, todoID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, todoID)
	}
	return nil
}

// newTodoTestRouter はtodoハンドラーのみを束ねたテスト用ルーターを返す。
// ミドルウェアチェーンを通さずハンドラー単体を検証する。
func newTodoTestRouter(svc *mockTodoService) http.Handler {
	h := NewTodoHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/todo", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/oneDay/{date}", h.ListOneDay)
		r.Get("/oneMonth/{date}", h.OneMonth)
		r.Get("/notDone/count", h.CountNotDone)
		r.Put("/checking/{todoId}", h.ToggleDone)
		r.Put("/title/{todoId}", h.Rename)
		r.Delete("/{todoId}", h.Delete)
	})
	return r
}

func dateOf(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse(todo.DateLayout, value)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", value, err)
	}
	return date
}

// --- POST /api/todo テスト ---

func TestTodoHandler_Create_Success(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error) {
			if userID != "hanako7" {
				t.Errorf("userID = %q, want %q", userID, "hanako7")
			}
			return &model.Todo{
				ID:       42,
				UserID:   userID,
				Date:     dateOf(t, input.Date),
				Title:    input.Title,
				Category: model.Category(input.Category),
			}, nil
		},
	}
	router := newTodoTestRouter(svc)

	body := `{"date":"2025-01-15","title":"数学の宿題","category":"STUDY"}`
	req := httptest.NewRequest(http.MethodPost, "/api/todo", strings.NewReader(body))
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("envelope data = %T, want object", envelope.Data)
	}
	if data["todoId"] != float64(42) {
		t.Errorf("data.todoId = %v, want 42", data["todoId"])
	}
	if data["title"] != "数学の宿題" {
		t.Errorf("data.title = %v, want 数学の宿題", data["title"])
	}
}

func TestTodoHandler_Create_NoIdentity_ReturnsUnauthorized(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error) {
			t.Fatal("Create should not be called without identity")
			return nil, nil
		},
	}
	router := newTodoTestRouter(svc)

	body := `{"date":"2025-01-15","title":"宿題","category":"STUDY"}`
	req := httptest.NewRequest(http.MethodPost, "/api/todo", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestTodoHandler_Create_ValidationError(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID string, input todo.CreateInput) (*model.Todo, error) {
			return nil, model.NewValidationError("カテゴリが正しくありません。")
		},
	}
	router := newTodoTestRouter(svc)

	body := `{"date":"2025-01-15","title":"宿題","category":"COOKING"}`
	req := httptest.NewRequest(http.MethodPost, "/api/todo", strings.NewReader(body))
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /api/todo/oneDay/{date} テスト ---

func TestTodoHandler_ListOneDay(t *testing.T) {
	svc := &mockTodoService{
		listOneDayFn: func(ctx context.Context, userID string, dateString string) ([]*model.Todo, error) {
			if dateString != "2025-01-15" {
				t.Errorf("dateString = %q, want %q", dateString, "2025-01-15")
			}
			return []*model.Todo{
				{ID: 1, UserID: userID, Date: dateOf(t, dateString), Title: "数学の宿題", Category: model.CategoryStudy},
				{ID: 2, UserID: userID, Date: dateOf(t, dateString), Title: "ランニング", Category: model.CategoryExercise, IsDone: true},
			}, nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/todo/oneDay/2025-01-15", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.([]interface{})
	if !ok {
		t.Fatalf("envelope data = %T, want array", envelope.Data)
	}
	if len(data) != 2 {
		t.Errorf("len(data) = %d, want 2", len(data))
	}
}

func TestTodoHandler_ListOneDay_Empty(t *testing.T) {
	router := newTodoTestRouter(&mockTodoService{})

	req := httptest.NewRequest(http.MethodGet, "/api/todo/oneDay/2025-01-15", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.([]interface{})
	if !ok {
		t.Fatalf("envelope data = %T, want array (not null)", envelope.Data)
	}
	if len(data) != 0 {
		t.Errorf("len(data) = %d, want 0", len(data))
	}
}

// --- GET /api/todo/oneMonth/{date} テスト ---

func TestTodoHandler_OneMonth(t *testing.T) {
	svc := &mockTodoService{
		oneMonthFn: func(ctx context.Context, userID string, year int, month time.Month) (map[int]todo.DayCount, error) {
			if year != 2025 || month != time.January {
				t.Errorf("year/month = %d/%v, want 2025/January", year, month)
			}
			return map[int]todo.DayCount{
				1: {DoneCount: 1, NotDoneCount: 2},
				2: {},
			}, nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/todo/oneMonth/2025-01", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("envelope data = %T, want object", envelope.Data)
	}
	day1, ok := data["1"].(map[string]interface{})
	if !ok {
		t.Fatalf("data[1] = %T, want object", data["1"])
	}
	if day1["doneCount"] != float64(1) || day1["notDoneCount"] != float64(2) {
		t.Errorf("day 1 = %v, want doneCount=1 notDoneCount=2", day1)
	}
}

func TestTodoHandler_OneMonth_InvalidFormat(t *testing.T) {
	svc := &mockTodoService{
		oneMonthFn: func(ctx context.Context, userID string, year int, month time.Month) (map[int]todo.DayCount, error) {
			t.Fatal("OneMonth should not be called for invalid format")
			return nil, nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/todo/oneMonth/2025-1-15", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /api/todo/notDone/count テスト ---

func TestTodoHandler_CountNotDone(t *testing.T) {
	svc := &mockTodoService{
		countNotDoneFn: func(ctx context.Context, userID string) (int, error) {
			return 7, nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/todo/notDone/count", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, w)
	if envelope.Data != float64(7) {
		t.Errorf("envelope data = %v, want 7", envelope.Data)
	}
}

// --- PUT /api/todo/checking/{todoId} テスト ---

func TestTodoHandler_ToggleDone_Success(t *testing.T) {
	var gotTodoID int64
	svc := &mockTodoService{
		toggleDoneFn: func(ctx context.Context, userID string, todoID int64) error {
			gotTodoID = todoID
			return nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/todo/checking/42", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTodoID != 42 {
		t.Errorf("todoID = %d, want 42", gotTodoID)
	}
}

func TestTodoHandler_ToggleDone_NotFound(t *testing.T) {
	svc := &mockTodoService{
		toggleDoneFn: func(ctx context.Context, userID string, todoID int64) error {
			return model.NewEntityNotFoundError("todoが見つかりません。")
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/todo/checking/99", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestTodoHandler_ToggleDone_InvalidID(t *testing.T) {
	svc := &mockTodoService{
		toggleDoneFn: func(ctx context.Context, userID string, todoID int64) error {
			t.Fatal("ToggleDone should not be called for invalid ID")
			return nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/todo/checking/abc", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- PUT /api/todo/title/{todoId} テスト ---

func TestTodoHandler_Rename_Success(t *testing.T) {
	var gotTitle string
	svc := &mockTodoService{
		renameFn: func(ctx context.Context, userID string, todoID int64, title string) error {
			gotTitle = title
			return nil
		},
	}
	router := newTodoTestRouter(svc)

	body := `{"title":"英語の予習"}`
	req := httptest.NewRequest(http.MethodPut, "/api/todo/title/42", strings.NewReader(body))
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTitle != "英語の予習" {
		t.Errorf("title = %q, want %q", gotTitle, "英語の予習")
	}
}

// --- DELETE /api/todo/{todoId} テスト ---

func TestTodoHandler_Delete_Success(t *testing.T) {
	var gotTodoID int64
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, userID string, todoID int64) error {
			gotTodoID = todoID
			return nil
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/todo/42", nil)
	req = withIdentity(req, "hanako7")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotTodoID != 42 {
		t.Errorf("todoID = %d, want 42", gotTodoID)
	}
}

func TestTodoHandler_Delete_ForeignTodo_IndistinguishableFromMissing(t *testing.T) {
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, userID string, todoID int64) error {
			// 他ユーザー所有のtodoも存在しないtodoも同じ未検出エラーになる
			return model.NewEntityNotFoundError("todoが見つかりません。")
		},
	}
	router := newTodoTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/todo/42", nil)
	req = withIdentity(req, "other42a")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

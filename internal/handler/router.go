package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/planman/internal/metrics"
	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Validator   middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger

	// メトリクス
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// サービス
	AccountService AccountServiceInterface
	TodoService    TodoServiceInterface
}

// NewPolicy はルート→認可条件の静的テーブルを構築する。
// ここに列挙されていないルートはデフォルトでUSERロールを要求する。
func NewPolicy() *middleware.Policy {
	return middleware.NewPolicy([]middleware.Rule{
		{Method: http.MethodPost, Pattern: "/api/users/signup", Req: middleware.Public()},
		{Method: http.MethodGet, Pattern: "/api/users/email/*", Req: middleware.Public()},
		{Method: http.MethodGet, Pattern: "/api/users/userId/*", Req: middleware.Public()},
		{Method: http.MethodPost, Pattern: "/api/users/signin", Req: middleware.Public()},
		{Method: http.MethodGet, Pattern: "/health", Req: middleware.Public()},
		{Method: http.MethodGet, Pattern: "/metrics", Req: middleware.Public()},
		{Method: http.MethodDelete, Pattern: "/api/users", Req: middleware.RequiresRole(model.RoleUser)},
		{Method: "*", Pattern: "/api/todo", Req: middleware.RequiresRole(model.RoleUser)},
		{Method: "*", Pattern: "/api/todo/*", Req: middleware.RequiresRole(model.RoleUser)},
	})
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → AuthGate → Policy → RateLimit
//
// 認証ゲートはトークンの検証と身元の注入のみを行い、
// 可否の判断は認可ポリシーが行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewAuthMiddleware(deps.Validator, deps.Metrics))
	r.Use(middleware.NewPolicyMiddleware(NewPolicy(), deps.Metrics))
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware())
	}

	accountHandler := NewAccountHandler(deps.AccountService)
	todoHandler := NewTodoHandler(deps.TodoService)

	// --- 公開ルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeSuccessResponse(w, http.StatusOK, nil, "ok")
	})

	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// アカウント管理
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", accountHandler.Signup)
		r.Post("/signin", accountHandler.Signin)
		r.Get("/email/{email}", accountHandler.CheckEmail)
		r.Get("/userId/{userId}", accountHandler.CheckUserID)

		// DELETE /api/users - 退会（要認証）
		r.Delete("/", accountHandler.Withdraw)
	})

	// --- 保護ルート ---

	// todo管理
	r.Route("/api/todo", func(r chi.Router) {
		r.Post("/", todoHandler.Create)
		r.Get("/oneDay/{date}", todoHandler.ListOneDay)
		r.Get("/oneMonth/{date}", todoHandler.OneMonth)
		r.Get("/notDone/count", todoHandler.CountNotDone)
		r.Put("/checking/{todoId}", todoHandler.ToggleDone)
		r.Put("/title/{todoId}", todoHandler.Rename)
		r.Delete("/{todoId}", todoHandler.Delete)
	})

	return r
}

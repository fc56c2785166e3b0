package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/planman/internal/account"
	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	Signup(ctx context.Context, input account.SignupInput) (*model.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CheckUserIDExists(ctx context.Context, userID string) (bool, error)
	Login(ctx context.Context, input account.LoginInput) (string, error)
	Withdraw(ctx context.Context, userID string) error
}

// AccountHandler はアカウント管理のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// signupResponse はサインアップ成功時のレスポンスデータ。
type signupResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Signup は新規ユーザーを登録する。
// POST /api/users/signup
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input account.SignupInput
	if !decodeJSONBody(w, r, &input) {
		return
	}

	user, err := h.service.Signup(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusCreated, signupResponse{
		UserID: user.UserID,
		Email:  user.Email,
	}, "会員登録が完了しました。")
}

// CheckEmail はメールアドレスが使用可能かを確認する。
// GET /api/users/email/{email}
func (h *AccountHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	exists, err := h.service.CheckEmailExists(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if exists {
		writeErrorResponse(w, model.NewEntityDuplicatedError("このメールアドレスは既に使われています。"))
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil, "使用可能なメールアドレスです。")
}

// CheckUserID はユーザーIDが使用可能かを確認する。
// GET /api/users/userId/{userId}
func (h *AccountHandler) CheckUserID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	exists, err := h.service.CheckUserIDExists(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if exists {
		writeErrorResponse(w, model.NewEntityDuplicatedError("このユーザーIDは既に使われています。"))
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil, "使用可能なユーザーIDです。")
}

// Signin はユーザーIDとパスワードで認証し、トークンを発行する。
// 発行したトークンはAuthorizationレスポンスヘッダーで返す。
// POST /api/users/signin
func (h *AccountHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var input account.LoginInput
	if !decodeJSONBody(w, r, &input) {
		return
	}

	tokenString, err := h.service.Login(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+tokenString)
	writeSuccessResponse(w, http.StatusCreated, nil, "サインインに成功しました。")
}

// Withdraw はユーザーの退会処理を実行する。
// 所有する全todoも同時に削除される。
// DELETE /api/users
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, model.NewTokenInvalidError())
		return
	}

	if err := h.service.Withdraw(r.Context(), identity.Subject); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, nil, "退会が完了しました。")
}

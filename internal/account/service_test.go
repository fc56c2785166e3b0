package account

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByUserIDFn    func(ctx context.Context, userID string) (*model.User, error)
	findByEmailFn     func(ctx context.Context, email string) (*model.User, error)
	createFn          func(ctx context.Context, user *model.User) error
	deleteWithTodosFn func(ctx context.Context, userID string) error
}

func (m *mockUserRepo) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) DeleteWithTodos(ctx context.Context, userID string) error {
	if m.deleteWithTodosFn != nil {
		return m.deleteWithTodosFn(ctx, userID)
	}
	return nil
}

type mockIssuer struct {
	issueFn func(subject, role string) (string, error)
}

func (m *mockIssuer) Issue(subject, role string) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(subject, role)
	}
	return "issued-token", nil
}

func validSignupInput() SignupInput {
	return SignupInput{
		Email:    "hanako@example.com",
		UserID:   "hanako7",
		Password: "Passw0rd!",
	}
}

// --- Signupのテスト ---

// TestSignup_Success は有効な入力でユーザーが作成されることを検証する。
func TestSignup_Success(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	// テストの高速化のため最小コストを使う
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	user, err := service.Signup(context.Background(), validSignupInput())
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if user.UserID != "hanako7" {
		t.Errorf("UserID = %q, want %q", user.UserID, "hanako7")
	}
	if user.Email != "hanako@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "hanako@example.com")
	}
	if user.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleUser)
	}
	if user.ID == "" {
		t.Error("expected internal ID to be generated")
	}
	if user.PasswordHash == "Passw0rd!" || user.PasswordHash == "" {
		t.Error("password should be stored as a bcrypt hash")
	}
	// ハッシュが元パスワードと照合できること
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Passw0rd!")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

// TestSignup_ValidationFailures は検証違反が全て結合された
// 1つのエラーメッセージになることを検証する。
func TestSignup_ValidationFailures(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("Create should not be called for invalid input")
			return nil
		},
	}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	tests := []struct {
		name          string
		input         SignupInput
		wantFragments []string
	}{
		{
			name: "メール形式が不正",
			input: SignupInput{
				Email:    "not-an-email",
				UserID:   "hanako7",
				Password: "Passw0rd!",
			},
			wantFragments: []string{"メールアドレス"},
		},
		{
			name: "ユーザーIDが短すぎる",
			input: SignupInput{
				Email:    "hanako@example.com",
				UserID:   "abc12",
				Password: "Passw0rd!",
			},
			wantFragments: []string{"ユーザーID"},
		},
		{
			name: "ユーザーIDに大文字が含まれる",
			input: SignupInput{
				Email:    "hanako@example.com",
				UserID:   "Hanako7",
				Password: "Passw0rd!",
			},
			wantFragments: []string{"ユーザーID"},
		},
		{
			name: "パスワードが短すぎる",
			input: SignupInput{
				Email:    "hanako@example.com",
				UserID:   "hanako7",
				Password: "Pw0!",
			},
			wantFragments: []string{"8文字以上"},
		},
		{
			name: "パスワードに大文字がない",
			input: SignupInput{
				Email:    "hanako@example.com",
				UserID:   "hanako7",
				Password: "passw0rd!",
			},
			wantFragments: []string{"英大文字"},
		},
		{
			name: "パスワードに記号がない",
			input: SignupInput{
				Email:    "hanako@example.com",
				UserID:   "hanako7",
				Password: "Passw0rd",
			},
			wantFragments: []string{"記号"},
		},
		{
			name: "複数の違反が1つのメッセージに結合される",
			input: SignupInput{
				Email:    "bad",
				UserID:   "x",
				Password: "short",
			},
			wantFragments: []string{"メールアドレス", "ユーザーID", "8文字以上"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Signup(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			apiErr, ok := err.(*model.APIError)
			if !ok {
				t.Fatalf("expected *model.APIError, got %T", err)
			}
			if apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
			}
			for _, fragment := range tt.wantFragments {
				if !strings.Contains(apiErr.Message, fragment) {
					t.Errorf("message %q does not contain %q", apiErr.Message, fragment)
				}
			}
		})
	}
}

// TestSignup_Duplicate は一意制約違反が重複エラーになることを検証する。
func TestSignup_Duplicate(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicate
		},
	}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	_, err := service.Signup(context.Background(), validSignupInput())
	if err == nil {
		t.Fatal("expected duplicate error")
	}

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeEntityDuplicated {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEntityDuplicated)
	}
}

// --- 存在確認のテスト ---

// TestCheckEmailExists はメールアドレスの存在確認を検証する。
func TestCheckEmailExists(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "hanako@example.com" {
				return &model.User{Email: email}, nil
			}
			return nil, nil
		},
	}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	exists, err := service.CheckEmailExists(context.Background(), "hanako@example.com")
	if err != nil {
		t.Fatalf("CheckEmailExists returned error: %v", err)
	}
	if !exists {
		t.Error("expected existing email to return true")
	}

	exists, err = service.CheckEmailExists(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("CheckEmailExists returned error: %v", err)
	}
	if exists {
		t.Error("expected unknown email to return false")
	}
}

// TestCheckUserIDExists はユーザーIDの存在確認を検証する。
func TestCheckUserIDExists(t *testing.T) {
	repo := &mockUserRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.User, error) {
			if userID == "hanako7" {
				return &model.User{UserID: userID}, nil
			}
			return nil, nil
		},
	}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	exists, err := service.CheckUserIDExists(context.Background(), "hanako7")
	if err != nil {
		t.Fatalf("CheckUserIDExists returned error: %v", err)
	}
	if !exists {
		t.Error("expected existing userID to return true")
	}

	exists, err = service.CheckUserIDExists(context.Background(), "unknown1")
	if err != nil {
		t.Fatalf("CheckUserIDExists returned error: %v", err)
	}
	if exists {
		t.Error("expected unknown userID to return false")
	}
}

// --- Loginのテスト ---

func storedUser(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &model.User{
		ID:           "internal-id",
		UserID:       "hanako7",
		Email:        "hanako@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
}

// TestLogin_Success は正しい資格情報でトークンが発行されることを検証する。
func TestLogin_Success(t *testing.T) {
	user := storedUser(t, "Passw0rd!")
	repo := &mockUserRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.User, error) {
			return user, nil
		},
	}
	var issuedSubject, issuedRole string
	issuer := &mockIssuer{
		issueFn: func(subject, role string) (string, error) {
			issuedSubject = subject
			issuedRole = role
			return "issued-token", nil
		},
	}
	service := NewService(repo, issuer, bcrypt.MinCost)

	tokenString, err := service.Login(context.Background(), LoginInput{
		UserID:   "hanako7",
		Password: "Passw0rd!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if tokenString != "issued-token" {
		t.Errorf("token = %q, want %q", tokenString, "issued-token")
	}
	if issuedSubject != "hanako7" {
		t.Errorf("issued subject = %q, want %q", issuedSubject, "hanako7")
	}
	if issuedRole != model.RoleUser {
		t.Errorf("issued role = %q, want %q", issuedRole, model.RoleUser)
	}
}

// TestLogin_UnknownUser は存在しないユーザーIDで未検出エラーになることを検証する。
func TestLogin_UnknownUser(t *testing.T) {
	repo := &mockUserRepo{}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	_, err := service.Login(context.Background(), LoginInput{
		UserID:   "unknown1",
		Password: "Passw0rd!",
	})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeEntityNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEntityNotFound)
	}
}

// TestLogin_WrongPassword はパスワード不一致で専用エラーになることを検証する。
func TestLogin_WrongPassword(t *testing.T) {
	user := storedUser(t, "Passw0rd!")
	repo := &mockUserRepo{
		findByUserIDFn: func(ctx context.Context, userID string) (*model.User, error) {
			return user, nil
		},
	}
	issuer := &mockIssuer{
		issueFn: func(subject, role string) (string, error) {
			t.Fatal("Issue should not be called for wrong password")
			return "", nil
		},
	}
	service := NewService(repo, issuer, bcrypt.MinCost)

	_, err := service.Login(context.Background(), LoginInput{
		UserID:   "hanako7",
		Password: "WrongPass1!",
	})
	if err == nil {
		t.Fatal("expected error for wrong password")
	}

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodePasswordIncorrect {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodePasswordIncorrect)
	}
}

// --- Withdrawのテスト ---

// TestWithdraw_Success は退会処理がリポジトリに委譲されることを検証する。
func TestWithdraw_Success(t *testing.T) {
	var deletedUserID string
	repo := &mockUserRepo{
		deleteWithTodosFn: func(ctx context.Context, userID string) error {
			deletedUserID = userID
			return nil
		},
	}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	if err := service.Withdraw(context.Background(), "hanako7"); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if deletedUserID != "hanako7" {
		t.Errorf("deleted userID = %q, want %q", deletedUserID, "hanako7")
	}
}

// TestWithdraw_UnknownUser は存在しないユーザーの退会で未検出エラーになることを検証する。
func TestWithdraw_UnknownUser(t *testing.T) {
	repo := &mockUserRepo{
		deleteWithTodosFn: func(ctx context.Context, userID string) error {
			return repository.ErrNotFound
		},
	}
	service := NewService(repo, &mockIssuer{}, bcrypt.MinCost)

	err := service.Withdraw(context.Background(), "unknown1")
	if err == nil {
		t.Fatal("expected error for unknown user")
	}

	apiErr, ok := err.(*model.APIError)
	if !ok {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeEntityNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEntityNotFound)
	}
}

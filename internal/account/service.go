// Package account はユーザー登録・認証・退会のドメインロジックを提供する。
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/repository"
)

// TokenIssuer は認証トークンの発行インターフェース。
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

// LoginInput はサインインのリクエスト入力。
type LoginInput struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// Service はアカウント管理のサービス層。
// サインアップ・サインイン・存在確認・退会のビジネスロジックを提供する。
type Service struct {
	userRepo   repository.UserRepository
	issuer     TokenIssuer
	bcryptCost int
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// bcryptCostに0を指定するとbcrypt.DefaultCostを使用する。
func NewService(userRepo repository.UserRepository, issuer TokenIssuer, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// SetClock は現在時刻の取得関数を差し替える。テスト用。
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Signup は新規ユーザーを登録する。
// 入力検証に失敗した場合は違反メッセージを全て結合したエラーを返す。
// ユーザーIDまたはメールアドレスが既に使われている場合は重複エラーを返す。
// 登録成功時にトークンは発行しない。サインインは別途行う。
func (s *Service) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	if violations := validateSignup(input); len(violations) > 0 {
		return nil, model.NewValidationError(strings.Join(violations, "; "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEntityDuplicatedError("このユーザーIDまたはメールアドレスは既に使われています。")
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.UserID),
	)

	return user, nil
}

// CheckEmailExists は指定メールアドレスのユーザーが存在するかを返す。
func (s *Service) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("メールアドレスの確認に失敗しました: %w", err)
	}
	return user != nil, nil
}

// CheckUserIDExists は指定ユーザーIDのユーザーが存在するかを返す。
func (s *Service) CheckUserIDExists(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.FindByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("ユーザーIDの確認に失敗しました: %w", err)
	}
	return user != nil, nil
}

// Login はユーザーIDとパスワードを検証し、認証トークンを発行する。
// ユーザーが存在しない場合は未検出エラー、
// パスワードが一致しない場合はパスワード不一致エラーを返す。
func (s *Service) Login(ctx context.Context, input LoginInput) (string, error) {
	user, err := s.userRepo.FindByUserID(ctx, input.UserID)
	if err != nil {
		return "", fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return "", model.NewEntityNotFoundError("ユーザーが見つかりません。")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", model.NewPasswordIncorrectError()
	}

	tokenString, err := s.issuer.Issue(user.UserID, user.Role)
	if err != nil {
		return "", fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("ユーザーがサインインしました",
		slog.String("user_id", user.UserID),
	)

	return tokenString, nil
}

// Withdraw はユーザーの退会処理を実行する。
// ユーザーと所有する全todoを同一トランザクションで削除する。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if err := s.userRepo.DeleteWithTodos(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewEntityNotFoundError("ユーザーが見つかりません。")
		}
		return fmt.Errorf("退会処理に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}

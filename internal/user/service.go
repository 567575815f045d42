// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/tracker/internal/auth"
	"github.com/hitoshi/tracker/internal/model"
	"github.com/hitoshi/tracker/internal/repository"
)

// PasswordMinLength はパスワードの最小文字数。
const PasswordMinLength = 8

// Service はユーザー管理のサービス層。
// 登録と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	bcryptCost  int
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// bcryptCostが0の場合はbcrypt.DefaultCostを使用する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	bcryptCost int,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		bcryptCost:  bcryptCost,
		now:         time.Now,
	}
}

// Register はユーザーを登録する。
// ユーザー名は必須で150文字以内かつユニーク、パスワードは8文字以上。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	fe := model.FieldErrors{}
	username = strings.TrimSpace(username)
	if username == "" {
		fe.Add("username", "This field is required.")
	} else if n := utf8.RuneCountInString(username); n > model.UsernameMaxLength {
		fe.Add("username", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", model.UsernameMaxLength, n))
	}
	if utf8.RuneCountInString(password) < PasswordMinLength {
		fe.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", PasswordMinLength))
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, model.NewValidationError(model.FieldErrors{
				"username": {"A user with that username already exists."},
			})
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → user（+ CASCADE: projects, tasks。担当タスクのassignee_idはNULL）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. セッションを削除
	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	// 2. ユーザーを削除
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}

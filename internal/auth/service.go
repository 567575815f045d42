// Package auth はパスワード認証、セッション管理、アクセストークンの発行を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/tracker/internal/metrics"
	"github.com/hitoshi/tracker/internal/model"
	"github.com/hitoshi/tracker/internal/repository"
)

// ErrSessionNotFound はセッションが存在しないか期限切れの場合のエラー。
var ErrSessionNotFound = errors.New("session not found or expired")

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
	BcryptCost    int // 0の場合はbcrypt.DefaultCost
}

// LoginResult はログイン成功時に発行されるセッションとアクセストークン。
type LoginResult struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *TokenIssuer
	metrics     metrics.MetricsCollector
	config      ServiceConfig
	dummyHash   string
	now         func() time.Time
}

// NewService はServiceを生成する。
// 未登録ユーザーに対しても同等の処理時間とするため、比較用のダミーハッシュを事前に生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *TokenIssuer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) (*Service, error) {
	dummy, err := HashPassword("tracker-dummy-password", config.BcryptCost)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		metrics:     collector,
		config:      config,
		dummyHash:   dummy,
		now:         time.Now,
	}, nil
}

// Login はユーザー名とパスワードで認証し、セッションとアクセストークンを発行する。
// 認証に失敗した場合はAUTHENTICATION_FAILEDのAPIErrorを返す。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = user.PasswordHash
	}
	ok := CheckPassword(hash, password)
	if user == nil || !ok {
		s.metrics.RecordLoginAttempt(false)
		slog.Info("login failed", slog.String("username", username))
		return nil, model.NewAuthenticationFailedError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLoginAttempt(true)
	slog.Info("user logged in", slog.String("user_id", user.ID))

	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// GetCurrentUser はユーザーIDから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// AuthenticateSession はセッションIDを検証し、ユーザーIDを返す。
// セッションが存在しないか期限切れの場合はErrSessionNotFoundを返す。
func (s *Service) AuthenticateSession(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}
	return session.UserID, nil
}

// AuthenticateToken はアクセストークンを検証し、ユーザーIDを返す。
// 退会済みユーザーのトークンはErrInvalidTokenとして扱う。
func (s *Service) AuthenticateToken(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidToken
	}
	return user.ID, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

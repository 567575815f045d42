package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tracker/internal/auth"
	"github.com/hitoshi/tracker/internal/middleware"
	"github.com/hitoshi/tracker/internal/model"
	"github.com/hitoshi/tracker/internal/task"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn          func(ctx context.Context, username, password string) (*auth.LoginResult, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, model.NewAuthenticationFailedError()
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

type mockProjectService struct {
	createFn func(ctx context.Context, ownerID, name, description string) (*model.ProjectWithOwner, error)
	listFn   func(ctx context.Context, ownerID, search string) ([]*model.Project, error)
}

func (m *mockProjectService) Create(ctx context.Context, ownerID, name, description string) (*model.ProjectWithOwner, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, name, description)
	}
	return nil, errors.New("not implemented")
}

func (m *mockProjectService) List(ctx context.Context, ownerID, search string) ([]*model.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, search)
	}
	return []*model.Project{}, nil
}

type mockTaskService struct {
	authorizeProjectFn func(ctx context.Context, userID, projectID string) error
	createTaskFn       func(ctx context.Context, userID, projectID string, in model.TaskInput) (*model.Task, error)
	listTasksFn        func(ctx context.Context, userID string, q task.ListQuery) ([]*model.Task, error)
}

func (m *mockTaskService) AuthorizeProject(ctx context.Context, userID, projectID string) error {
	if m.authorizeProjectFn != nil {
		return m.authorizeProjectFn(ctx, userID, projectID)
	}
	return nil
}

func (m *mockTaskService) CreateTask(ctx context.Context, userID, projectID string, in model.TaskInput) (*model.Task, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, userID, projectID, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTaskService) ListTasks(ctx context.Context, userID string, q task.ListQuery) ([]*model.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, userID, q)
	}
	return []*model.Task{}, nil
}

type mockDashboardService struct {
	summaryFn func(ctx context.Context, userID string) (*model.DashboardSummary, error)
}

func (m *mockDashboardService) Summary(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ctx, userID)
	}
	return &model.DashboardSummary{
		TasksByStatus: map[model.TaskStatus]int{},
		UpcomingTasks: []model.UpcomingTask{},
	}, nil
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// mockAuthenticator はセッションIDとトークンをそれぞれ固定のユーザーに対応付ける。
type mockAuthenticator struct {
	sessions map[string]string
	tokens   map[string]string
}

func (m *mockAuthenticator) AuthenticateSession(ctx context.Context, sessionID string) (string, error) {
	if id, ok := m.sessions[sessionID]; ok {
		return id, nil
	}
	return "", auth.ErrSessionNotFound
}

func (m *mockAuthenticator) AuthenticateToken(ctx context.Context, token string) (string, error) {
	if id, ok := m.tokens[token]; ok {
		return id, nil
	}
	return "", auth.ErrInvalidToken
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

var (
	_ AuthServiceInterface      = (*mockAuthService)(nil)
	_ ProjectServiceInterface   = (*mockProjectService)(nil)
	_ TaskServiceInterface      = (*mockTaskService)(nil)
	_ DashboardServiceInterface = (*mockDashboardService)(nil)
	_ UserServiceInterface      = (*mockUserService)(nil)
	_ middleware.Authenticator  = (*mockAuthenticator)(nil)
	_ HealthChecker             = (*mockHealthChecker)(nil)
)

// --- ヘルパー ---

// withUserID はテスト用にコンテキストへユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorBody はエラーレスポンスのボディをデコードする。
func decodeErrorBody(t *testing.T, resp *http.Response) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

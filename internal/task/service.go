// Package task はタスク管理のドメインロジックを提供する。
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/tracker/internal/metrics"
	"github.com/hitoshi/tracker/internal/model"
	"github.com/hitoshi/tracker/internal/repository"
	"github.com/hitoshi/tracker/internal/security"
)

const entityName = "task"

// OwnerOnlyMessage はプロジェクトオーナー以外がタスクを作成しようとした場合のメッセージ。
const OwnerOnlyMessage = "Only the project owner can create tasks."

// ListQuery はタスク一覧のクエリパラメータ（未解釈の文字列）を表す。
type ListQuery struct {
	Status    string
	ProjectID string
	DueBefore string // YYYY-MM-DD
}

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo     repository.TaskRepository
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository
	descriptions security.DescriptionPolicy
	metrics      metrics.MetricsCollector
	location     *time.Location
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// locは「今日」を判定するタイムゾーン。nilの場合はUTC。
func NewService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	descriptions security.DescriptionPolicy,
	collector metrics.MetricsCollector,
	loc *time.Location,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		descriptions: descriptions,
		metrics:      collector,
		location:     loc,
		now:          time.Now,
	}
}

// AuthorizeProject はユーザーがプロジェクト配下にタスクを作成できるかを確認する。
// プロジェクトが存在しない（IDが不正な場合を含む）場合はPROJECT_NOT_FOUND、
// オーナー以外の場合はFORBIDDENを返す。
// ハンドラーはリクエストボディを解釈する前にこれを呼び出す。
func (s *Service) AuthorizeProject(ctx context.Context, userID, projectID string) error {
	if _, err := uuid.Parse(projectID); err != nil {
		return model.NewProjectNotFoundError(projectID)
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return model.NewProjectNotFoundError(projectID)
	}
	if project.OwnerID != userID {
		return model.NewForbiddenError(OwnerOnlyMessage)
	}
	return nil
}

// CreateTask はプロジェクト配下にタスクを作成する。
// 検証順序: プロジェクトの存在 → オーナー権限 → フィールド検証（担当者の存在を含む）。
func (s *Service) CreateTask(ctx context.Context, userID, projectID string, in model.TaskInput) (*model.Task, error) {
	if err := s.AuthorizeProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	now := s.now()
	today := model.DateOf(now, s.location)
	t, fe := in.ToTask(projectID, today)
	if s.descriptions != nil && !s.descriptions.Allows(t.Description) {
		fe.Add("description", model.DescriptionMarkupMessage)
	}

	if t.AssigneeID != nil {
		found, err := s.assigneeExists(ctx, *t.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !found {
			fe.Add("assignee_id", model.AssigneeNotFoundMessage)
		}
	}

	if err := fe.Err(); err != nil {
		s.metrics.RecordValidationFailure(entityName)
		return nil, err
	}

	// 書き込み直前に不変条件を再確認する
	if err := t.Validate(today).Err(); err != nil {
		s.metrics.RecordValidationFailure(entityName)
		return nil, err
	}

	t.ID = uuid.New().String()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.taskRepo.Create(ctx, t); err != nil {
		switch {
		case errors.Is(err, repository.ErrAssigneeNotFound):
			s.metrics.RecordValidationFailure(entityName)
			return nil, model.NewValidationError(model.FieldErrors{
				"assignee_id": {model.AssigneeNotFoundMessage},
			})
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, model.NewProjectNotFoundError(projectID)
		}
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}

	s.metrics.RecordEntityCreated(entityName)
	slog.Info("タスクを作成しました",
		slog.String("task_id", t.ID),
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
	)

	return t, nil
}

// ListTasks はユーザーが閲覧可能なタスクをクエリ条件で絞り込んで返す。
// project_idがUUIDでない場合はINVALID_PROJECT_ID、due_beforeが不正な場合はINVALID_DATEを返す。
func (s *Service) ListTasks(ctx context.Context, userID string, q ListQuery) ([]*model.Task, error) {
	filter, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListVisible(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return tasks, nil
}

// parseListQuery はクエリパラメータをTaskFilterに変換する。
func parseListQuery(q ListQuery) (model.TaskFilter, error) {
	filter := model.TaskFilter{Status: model.TaskStatus(q.Status)}

	if q.ProjectID != "" {
		id, err := uuid.Parse(q.ProjectID)
		if err != nil {
			return model.TaskFilter{}, model.NewInvalidProjectIDError(q.ProjectID)
		}
		filter.ProjectID = id.String()
	}

	if q.DueBefore != "" {
		d, err := model.ParseDate(q.DueBefore)
		if err != nil {
			return model.TaskFilter{}, model.NewInvalidDateError(q.DueBefore)
		}
		filter.DueBefore = &d
	}

	return filter, nil
}

// assigneeExists は担当者として指定されたユーザーが存在するかを返す。
// UUIDとして解釈できないIDは存在しないものとして扱う。
func (s *Service) assigneeExists(ctx context.Context, assigneeID string) (bool, error) {
	if _, err := uuid.Parse(assigneeID); err != nil {
		return false, nil
	}
	user, err := s.userRepo.FindByID(ctx, assigneeID)
	if err != nil {
		return false, fmt.Errorf("担当者の取得に失敗しました: %w", err)
	}
	return user != nil, nil
}

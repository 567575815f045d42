// Package project はプロジェクト管理のドメインロジックを提供する。
package project

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

const entityName = "project"

// Service はプロジェクト管理のサービス層。
// プロジェクトの作成と一覧取得のビジネスロジックを提供する。
type Service struct {
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository
	descriptions security.DescriptionPolicy
	metrics      metrics.MetricsCollector
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	descriptions security.DescriptionPolicy,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		descriptions: descriptions,
		metrics:      collector,
		now:          time.Now,
	}
}

// Create はオーナーのプロジェクトを作成する。
// 名前の重複は事前チェックで検出し、同時作成による一意制約違反も同じバリデーションエラーとして返す。
func (s *Service) Create(ctx context.Context, ownerID, name, description string) (*model.ProjectWithOwner, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("オーナーの取得に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewUserNotFoundError()
	}

	now := s.now()
	p := &model.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	fe := p.Validate()
	if s.descriptions != nil && !s.descriptions.Allows(description) {
		fe.Add("description", model.DescriptionMarkupMessage)
	}
	if !fe.HasErrors() {
		exists, err := s.projectRepo.ExistsByOwnerAndName(ctx, ownerID, name)
		if err != nil {
			return nil, fmt.Errorf("プロジェクト名の重複確認に失敗しました: %w", err)
		}
		if exists {
			fe.Add("name", model.DuplicateProjectNameMessage)
		}
	}
	if err := fe.Err(); err != nil {
		s.metrics.RecordValidationFailure(entityName)
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateProjectName) {
			s.metrics.RecordValidationFailure(entityName)
			return nil, model.NewValidationError(model.FieldErrors{
				"name": {model.DuplicateProjectNameMessage},
			})
		}
		return nil, fmt.Errorf("プロジェクトの作成に失敗しました: %w", err)
	}

	s.metrics.RecordEntityCreated(entityName)
	slog.Info("プロジェクトを作成しました",
		slog.String("project_id", p.ID),
		slog.String("owner_id", ownerID),
	)

	return &model.ProjectWithOwner{Project: *p, OwnerUsername: owner.Username}, nil
}

// List はオーナーのプロジェクト一覧をcreated_at降順で返す。
// searchが空でない場合は名前の部分一致（大文字小文字を区別しない）で絞り込む。
func (s *Service) List(ctx context.Context, ownerID, search string) ([]*model.Project, error) {
	projects, err := s.projectRepo.ListByOwner(ctx, ownerID, model.ProjectFilter{Search: search})
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return projects, nil
}

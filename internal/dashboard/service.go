// Package dashboard はユーザーごとのダッシュボード集計を提供する。
package dashboard

import (
	"context"
	"fmt"

	"github.com/hitoshi/tracker/internal/model"
	"github.com/hitoshi/tracker/internal/repository"
)

// Service はダッシュボードのサービス層。
type Service struct {
	repo repository.DashboardRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.DashboardRepository) *Service {
	return &Service{repo: repo}
}

// Summary はユーザーがオーナーであるプロジェクトとそのタスクの集計を返す。
// 件数0の状態はTasksByStatusに含めない。UpcomingTasksは該当なしの場合は空スライス。
func (s *Service) Summary(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	summary, err := s.repo.Summarize(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ダッシュボードの集計に失敗しました: %w", err)
	}

	for status, n := range summary.TasksByStatus {
		if n == 0 {
			delete(summary.TasksByStatus, status)
		}
	}
	if summary.TasksByStatus == nil {
		summary.TasksByStatus = map[model.TaskStatus]int{}
	}
	if summary.UpcomingTasks == nil {
		summary.UpcomingTasks = []model.UpcomingTask{}
	}
	if len(summary.UpcomingTasks) > model.UpcomingTasksLimit {
		summary.UpcomingTasks = summary.UpcomingTasks[:model.UpcomingTasksLimit]
	}

	return summary, nil
}

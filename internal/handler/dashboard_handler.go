package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/tracker/internal/model"
)

// NoUpcomingTasksMessage は期限間近のタスクが1件もない場合にupcoming_tasksへ設定する値。
const NoUpcomingTasksMessage = "No upcoming tasks!"

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	Summary(ctx context.Context, userID string) (*model.DashboardSummary, error)
}

// DashboardHandler はダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(service DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type upcomingTaskResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Priority int    `json:"priority"`
}

// dashboardResponse はダッシュボードのAPIレスポンス。
// UpcomingTasksは該当タスクがある場合は配列、ない場合はNoUpcomingTasksMessageの文字列。
type dashboardResponse struct {
	TotalProjects int            `json:"total_projects"`
	TotalTasks    int            `json:"total_tasks"`
	TasksByStatus map[string]int `json:"tasks_by_status"`
	UpcomingTasks interface{}    `json:"upcoming_tasks"`
}

// Summary はログインユーザーのダッシュボード集計を返す。
// GET /api/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(summary))
}

func toDashboardResponse(s *model.DashboardSummary) dashboardResponse {
	resp := dashboardResponse{
		TotalProjects: s.TotalProjects,
		TotalTasks:    s.TotalTasks,
		TasksByStatus: make(map[string]int, len(s.TasksByStatus)),
	}
	for status, n := range s.TasksByStatus {
		resp.TasksByStatus[string(status)] = n
	}

	if len(s.UpcomingTasks) == 0 {
		resp.UpcomingTasks = NoUpcomingTasksMessage
		return resp
	}

	upcoming := make([]upcomingTaskResponse, 0, len(s.UpcomingTasks))
	for _, t := range s.UpcomingTasks {
		upcoming = append(upcoming, upcomingTaskResponse{
			ID:       t.ID,
			Title:    t.Title,
			DueDate:  model.FormatDate(t.DueDate),
			Priority: t.Priority,
		})
	}
	resp.UpcomingTasks = upcoming
	return resp
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tracker/internal/model"
	"github.com/hitoshi/tracker/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	AuthorizeProject(ctx context.Context, userID, projectID string) error
	CreateTask(ctx context.Context, userID, projectID string, in model.TaskInput) (*model.Task, error)
	ListTasks(ctx context.Context, userID string, q task.ListQuery) ([]*model.Task, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// createTaskRequest はタスク作成リクエストのボディ。
// priorityは整数・整数の文字列・nullのいずれも受け付けるため生の値で受け取る。
type createTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    json.RawMessage `json:"priority"`
	DueDate     *string         `json:"due_date"`
	AssigneeID  *string         `json:"assignee_id"`
}

func (req createTaskRequest) toInput() model.TaskInput {
	in := model.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    model.ParsePriority(req.Priority),
	}
	if req.DueDate != nil {
		in.DueDate = *req.DueDate
	}
	if req.AssigneeID != nil {
		in.AssigneeID = *req.AssigneeID
	}
	return in
}

// createTaskResponse はタスク作成のAPIレスポンス。projectは所属プロジェクトのID。
type createTaskResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Project string `json:"project"`
}

type taskResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	Priority  int     `json:"priority"`
	ProjectID string  `json:"project_id"`
	DueDate   *string `json:"due_date"`
}

type taskListResponse struct {
	Tasks []taskResponse `json:"tasks"`
}

// CreateTask はプロジェクト配下にタスクを作成する。
// POST /api/projects/{id}/tasks
// プロジェクトの存在とオーナー権限を確認してからリクエストボディを解釈する。
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projectID := chi.URLParam(r, "id")
	if err := h.service.AuthorizeProject(r.Context(), userID, projectID); err != nil {
		handleServiceError(w, err)
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	t, err := h.service.CreateTask(r.Context(), userID, projectID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createTaskResponse{
		ID:      t.ID,
		Title:   t.Title,
		Project: t.ProjectID,
	})
}

// ListTasks はログインユーザーが閲覧可能なタスクを一覧する。
// GET /api/tasks?status=xxx&project_id=xxx&due_before=YYYY-MM-DD
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	tasks, err := h.service.ListTasks(r.Context(), userID, task.ListQuery{
		Status:    query.Get("status"),
		ProjectID: query.Get("project_id"),
		DueBefore: query.Get("due_before"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := taskListResponse{Tasks: make([]taskResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t))
	}

	writeJSON(w, http.StatusOK, resp)
}

func toTaskResponse(t *model.Task) taskResponse {
	resp := taskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  t.Priority,
		ProjectID: t.ProjectID,
	}
	if t.DueDate != nil {
		d := model.FormatDate(*t.DueDate)
		resp.DueDate = &d
	}
	return resp
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/tracker/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, t *model.Task) error {
	var dueDate interface{}
	if t.DueDate != nil {
		dueDate = model.FormatDate(*t.DueDate)
	}
	var assigneeID interface{}
	if t.AssigneeID != nil {
		assigneeID = *t.AssigneeID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority, due_date, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), t.Priority,
		dueDate, assigneeID, t.CreatedAt, t.UpdatedAt,
	)
	switch {
	case isViolation(err, pqForeignKeyViolation, constraintTasksAssignee):
		return ErrAssigneeNotFound
	case isViolation(err, pqForeignKeyViolation, constraintTasksProject):
		return ErrProjectNotFound
	case err != nil:
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// ListVisible はユーザーが閲覧可能なタスクを返す。
func (r *PostgresTaskRepo) ListVisible(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	where, args := buildTaskFilter(userID, filter)
	query := `SELECT t.id, t.project_id, t.title, t.description, t.status, t.priority,
	                 t.due_date, t.assignee_id, t.created_at, t.updated_at
	          FROM tasks t
	          JOIN projects p ON p.id = t.project_id
	          WHERE ` + where + `
	          ORDER BY t.priority DESC, t.due_date ASC, t.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// buildTaskFilter は閲覧可能条件とフィルタ条件からWHERE句とパラメータを組み立てる。
// 各条件はAND結合され、ゼロ値の条件は含めない。
func buildTaskFilter(userID string, filter model.TaskFilter) (string, []interface{}) {
	conds := []string{"(p.owner_id = $1 OR t.assignee_id = $1)"}
	args := []interface{}{userID}

	add := func(expr string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(expr, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.Status != "" {
		add("t.status = ?", string(filter.Status))
	}
	if filter.ProjectID != "" {
		add("t.project_id = ?", filter.ProjectID)
	}
	if filter.DueBefore != nil {
		add("t.due_date <= ?", model.FormatDate(*filter.DueBefore))
	}

	return strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	t := &model.Task{}
	var status string
	var dueDate sql.NullTime
	var assigneeID sql.NullString
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.Priority,
		&dueDate, &assigneeID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	t.Status = model.TaskStatus(status)
	if dueDate.Valid {
		d := normalizeDate(dueDate.Time)
		t.DueDate = &d
	}
	if assigneeID.Valid {
		id := assigneeID.String
		t.AssigneeID = &id
	}
	return t, nil
}

// normalizeDate はDATE列の値をUTCの0時に揃える。
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)

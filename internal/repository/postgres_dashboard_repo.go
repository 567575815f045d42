package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tracker/internal/model"
)

// PostgresDashboardRepo はPostgreSQLを使用したダッシュボード集計リポジトリ。
type PostgresDashboardRepo struct {
	db TxBeginner
}

// NewPostgresDashboardRepo はPostgresDashboardRepoを生成する。
func NewPostgresDashboardRepo(db TxBeginner) *PostgresDashboardRepo {
	return &PostgresDashboardRepo{db: db}
}

// dashboardTxOptions は集計を単一スナップショットで行うためのトランザクション設定。
var dashboardTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// Summarize はオーナーのプロジェクトとタスクを単一スナップショットで集計する。
// 状態別件数の合計はタスク総数と一致する。
func (r *PostgresDashboardRepo) Summarize(ctx context.Context, ownerID string) (*model.DashboardSummary, error) {
	tx, err := r.db.BeginTx(ctx, dashboardTxOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	summary := &model.DashboardSummary{
		TasksByStatus: map[model.TaskStatus]int{},
		UpcomingTasks: []model.UpcomingTask{},
	}

	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM projects WHERE owner_id = $1`,
		ownerID,
	).Scan(&summary.TotalProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	if err := countTasksByStatus(ctx, tx, ownerID, summary); err != nil {
		return nil, err
	}

	if err := listUpcomingTasks(ctx, tx, ownerID, summary); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return summary, nil
}

// countTasksByStatus は状態別のタスク件数を集計し、その合計をタスク総数とする。
// 件数が0の状態は含まれない。
func countTasksByStatus(ctx context.Context, tx *sql.Tx, ownerID string, summary *model.DashboardSummary) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT t.status, count(*)
		 FROM tasks t
		 JOIN projects p ON p.id = t.project_id
		 WHERE p.owner_id = $1
		 GROUP BY t.status`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to count tasks by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.TasksByStatus[model.TaskStatus(status)] = count
		summary.TotalTasks += count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return nil
}

// listUpcomingTasks は期限があり未完了のタスクを期限の昇順で取得する。
func listUpcomingTasks(ctx context.Context, tx *sql.Tx, ownerID string, summary *model.DashboardSummary) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT t.id, t.title, t.due_date, t.priority
		 FROM tasks t
		 JOIN projects p ON p.id = t.project_id
		 WHERE p.owner_id = $1
		   AND t.status <> $2
		   AND t.due_date IS NOT NULL
		 ORDER BY t.due_date ASC, t.id
		 LIMIT $3`,
		ownerID, string(model.TaskStatusDone), model.UpcomingTasksLimit,
	)
	if err != nil {
		return fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.UpcomingTask
		if err := rows.Scan(&u.ID, &u.Title, &u.DueDate, &u.Priority); err != nil {
			return fmt.Errorf("failed to scan upcoming task: %w", err)
		}
		u.DueDate = normalizeDate(u.DueDate)
		summary.UpcomingTasks = append(summary.UpcomingTasks, u)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate upcoming tasks: %w", err)
	}
	return nil
}

// compile-time interface check
var _ DashboardRepository = (*PostgresDashboardRepo)(nil)

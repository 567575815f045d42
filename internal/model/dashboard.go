package model

import "time"

// UpcomingTasksLimit はダッシュボードに表示する期限間近タスクの最大件数。
const UpcomingTasksLimit = 5

// DashboardSummary はユーザーごとのダッシュボード集計結果を表す。
// 集計対象はユーザーがオーナーであるプロジェクトのタスクのみ（担当のみのタスクは含まない）。
type DashboardSummary struct {
	TotalProjects int
	TotalTasks    int
	// TasksByStatus は件数が1以上の状態のみを含む。
	TasksByStatus map[TaskStatus]int
	// UpcomingTasks は期限があり未完了のタスクを期限の昇順で最大UpcomingTasksLimit件。
	UpcomingTasks []UpcomingTask
}

// UpcomingTask は期限間近タスクの要約。
type UpcomingTask struct {
	ID       string
	Title    string
	DueDate  time.Time
	Priority int
}

package repository

import (
	"errors"

	"github.com/lib/pq"
)

// リポジトリ層のセンチネルエラー
var (
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrDuplicateProjectName = errors.New("project with this owner and name already exists")
	ErrAssigneeNotFound     = errors.New("assignee not found")
	ErrProjectNotFound      = errors.New("project not found")
)

// PostgreSQLのエラーコード
const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
)

// 制約名（migrationsで明示的に命名したもの）
const (
	constraintUsersUsername     = "users_username_key"
	constraintProjectsOwnerName = "projects_owner_id_name_key"
	constraintTasksProject      = "tasks_project_id_fkey"
	constraintTasksAssignee     = "tasks_assignee_id_fkey"
)

// pqErrorOf はerrが*pq.Errorの場合にそれを返す。
func pqErrorOf(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// isViolation はerrが指定コード・制約名の制約違反かどうかを返す。
// constraintが空の場合はコードのみで判定する。
func isViolation(err error, code pq.ErrorCode, constraint string) bool {
	pqErr, ok := pqErrorOf(err)
	if !ok || pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

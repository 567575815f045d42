// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/tracker/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するprojects（とそのtasks）、sessionsはCASCADE削除され、
	// 担当しているtasksのassignee_idはNULLに更新される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired はbefore時点で期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// ExistsByOwnerAndName は同一オーナー内に同名のプロジェクトが存在するかを返す。
	// 名前の比較は大文字小文字を区別する。
	ExistsByOwnerAndName(ctx context.Context, ownerID, name string) (bool, error)

	// Create はプロジェクトを作成する。
	// (owner_id, name) のユニーク制約違反はErrDuplicateProjectNameを返す。
	Create(ctx context.Context, project *model.Project) error

	// ListByOwner はオーナーのプロジェクト一覧をcreated_at降順で返す。
	ListByOwner(ctx context.Context, ownerID string, filter model.ProjectFilter) ([]*model.Project, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// Create はタスクを作成する。
	// 担当者の外部キー違反はErrAssigneeNotFound、プロジェクトの外部キー違反はErrProjectNotFoundを返す。
	Create(ctx context.Context, task *model.Task) error

	// ListVisible はユーザーが閲覧可能なタスクを返す。
	// 閲覧可能とは、タスクの属するプロジェクトのオーナーであるか、タスクの担当者であること。
	// 並び順は priority DESC, due_date ASC。
	ListVisible(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error)
}

// DashboardRepository はダッシュボード集計の読み取りインターフェース。
type DashboardRepository interface {
	// Summarize はオーナーのプロジェクトとタスクを単一スナップショットで集計する。
	Summarize(ctx context.Context, ownerID string) (*model.DashboardSummary, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

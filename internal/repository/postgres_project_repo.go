package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/tracker/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	p := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, owner_id, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project by ID: %w", err)
	}
	return p, nil
}

// ExistsByOwnerAndName は同一オーナー内に同名のプロジェクトが存在するかを返す。
func (r *PostgresProjectRepo) ExistsByOwnerAndName(ctx context.Context, ownerID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE owner_id = $1 AND name = $2)`,
		ownerID, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check project name: %w", err)
	}
	return exists, nil
}

// Create はプロジェクトを作成する。
// 事前チェックとINSERTの間に競合した場合もユニーク制約違反をErrDuplicateProjectNameに変換する。
func (r *PostgresProjectRepo) Create(ctx context.Context, p *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt,
	)
	if isViolation(err, pqUniqueViolation, constraintProjectsOwnerName) {
		return ErrDuplicateProjectName
	}
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// ListByOwner はオーナーのプロジェクト一覧をcreated_at降順で返す。
// filter.Searchが空でない場合はnameの大文字小文字を区別しない部分一致で絞り込む。
func (r *PostgresProjectRepo) ListByOwner(ctx context.Context, ownerID string, filter model.ProjectFilter) ([]*model.Project, error) {
	query := `SELECT id, name, description, owner_id, created_at, updated_at
	          FROM projects WHERE owner_id = $1`
	args := []interface{}{ownerID}
	if filter.Search != "" {
		query += ` AND name ILIKE $2 ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p := &model.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// likeEscaper はLIKEパターンのメタ文字をエスケープする。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike は検索語をLIKEパターン内でリテラルとして扱えるようエスケープする。
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)

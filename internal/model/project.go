// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ProjectNameMaxLength はプロジェクト名の最大文字数。
const ProjectNameMaxLength = 100

// Project はユーザーが所有するプロジェクトを表す。
// (OwnerID, Name) の組はユニーク（大文字小文字を区別する完全一致）。
type Project struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectWithOwner はプロジェクトとオーナーのユーザー名を結合したモデル。
type ProjectWithOwner struct {
	Project
	OwnerUsername string
}

// ProjectFilter はプロジェクト一覧の検索条件を表す。
type ProjectFilter struct {
	// Search はnameに対する大文字小文字を区別しない部分一致条件。空の場合は絞り込まない。
	Search string
}

// Validate はプロジェクトのフィールド制約を検証する。
// (OwnerID, Name) のユニーク性はストアを参照する必要があるためプロジェクトサービスで検証する。
func (p *Project) Validate() FieldErrors {
	fe := FieldErrors{}

	if strings.TrimSpace(p.Name) == "" {
		fe.Add("name", "Project name is required.")
	} else if n := utf8.RuneCountInString(p.Name); n > ProjectNameMaxLength {
		fe.Add("name", maxLengthMessage(ProjectNameMaxLength, n))
	}

	if p.OwnerID == "" {
		fe.Add("owner", "This field cannot be null.")
	}

	return fe
}

// DuplicateProjectNameMessage は同一オーナー内でプロジェクト名が重複した場合のメッセージ。
const DuplicateProjectNameMessage = "Project with this Owner and Name already exists."

// DescriptionMarkupMessage は説明文に許可されていないマークアップが含まれる場合のメッセージ。
// プロジェクトとタスクで共通。
const DescriptionMarkupMessage = "Description contains markup that is not allowed."

// maxLengthMessage は最大文字数超過のメッセージを返す。
func maxLengthMessage(limit, actual int) string {
	return fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, actual)
}

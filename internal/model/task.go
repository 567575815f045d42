// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// TaskStatus はタスクの進捗状態を表す。
type TaskStatus string

const (
	// TaskStatusTodo は未着手の状態。
	TaskStatusTodo TaskStatus = "todo"
	// TaskStatusInProgress は作業中の状態。
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone は完了した状態。
	TaskStatusDone TaskStatus = "done"
)

// IsValid は定義済みの状態かどうかを返す。
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

const (
	// TaskTitleMaxLength はタスクタイトルの最大文字数。
	TaskTitleMaxLength = 120
	// PriorityHighest は最も高い優先度。
	PriorityHighest = 1
	// PriorityLowest は最も低い優先度。
	PriorityLowest = 5
)

// バリデーションメッセージ
const (
	PriorityRequiredMessage = "Priority is required."
	PriorityRangeMessage    = "Priority must be between 1 (highest) and 5 (lowest)."
	DoneFutureDueMessage    = "A task marked done cannot have a future due date."
	TitleRequiredMessage    = "Task title is required."
	InvalidDateMessage      = "Enter a valid date in YYYY-MM-DD format."
	AssigneeNotFoundMessage = "Assignee not found."
)

// Task はプロジェクトに属するタスクを表す。
// DueDateは日付のみを保持し、UTCの0時として表現する。
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      TaskStatus
	Priority    int
	DueDate     *time.Time
	AssigneeID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate は書き込み前に必ず満たすべき不変条件を検証する。
// todayは検証時点のローカル日付（DateOfで正規化したもの）を渡す。
func (t *Task) Validate(today time.Time) FieldErrors {
	fe := FieldErrors{}
	validateTitle(t.Title, fe)
	if !t.Status.IsValid() {
		fe.Add("status", invalidChoiceMessage(string(t.Status)))
	}
	priority := t.Priority
	validateInvariants(&priority, t.Status, t.DueDate, today, fe)
	return fe
}

// PriorityInput はリクエストから受け取った未検証の優先度。
type PriorityInput struct {
	Present bool // 値が指定されたか（nullは未指定扱い）
	Valid   bool // 整数として解釈できたか
	Value   int
}

// PriorityOf は整数値からPriorityInputを生成する。
func PriorityOf(v int) PriorityInput {
	return PriorityInput{Present: true, Valid: true, Value: v}
}

// ParsePriority はJSONの生の値から優先度を解釈する。
// 空・nullは未指定、整数リテラルまたは整数を表す文字列は有効な値、それ以外は不正な値として扱う。
func ParsePriority(raw []byte) PriorityInput {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return PriorityInput{}
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return PriorityInput{Present: true}
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return PriorityInput{Present: true}
	}
	return PriorityOf(v)
}

// TaskInput はタスク作成の型付き入力スキーマ。
// 文字列のまま受け取り、ToTaskで解釈とバリデーションを行う。
type TaskInput struct {
	Title       string
	Description string
	Status      string // 空の場合はtodo
	Priority    PriorityInput
	DueDate     string // YYYY-MM-DD。空の場合は期限なし
	AssigneeID  string // 空の場合は担当者なし
}

// ToTask は入力を解釈してプロジェクト配下のTaskを組み立てる。
// 適用可能なすべてのフィールドエラーを集約して返す。
// 担当者の存在確認はストアを参照するため呼び出し側で行う。
func (in TaskInput) ToTask(projectID string, today time.Time) (*Task, FieldErrors) {
	fe := FieldErrors{}

	t := &Task{
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      TaskStatus(in.Status),
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}

	validateTitle(t.Title, fe)
	if !t.Status.IsValid() {
		fe.Add("status", invalidChoiceMessage(in.Status))
	}

	var priority *int
	if in.Priority.Present {
		if in.Priority.Valid {
			v := in.Priority.Value
			priority = &v
			t.Priority = v
		} else {
			fe.Add("priority", PriorityRangeMessage)
		}
	}

	if in.DueDate != "" {
		d, err := ParseDate(in.DueDate)
		if err != nil {
			fe.Add("due_date", InvalidDateMessage)
		} else {
			t.DueDate = &d
		}
	}

	if in.AssigneeID != "" {
		id := in.AssigneeID
		t.AssigneeID = &id
	}

	// 不正な優先度はすでに報告済みのため、不変条件の検証では必須チェックのみ抑止する
	if in.Priority.Present && !in.Priority.Valid {
		validateDueDate(t.Status, t.DueDate, today, fe)
	} else {
		validateInvariants(priority, t.Status, t.DueDate, today, fe)
	}

	return t, fe
}

// validateInvariants は優先度と完了タスクの期限に関する不変条件を検証する。
// 1. 優先度は必須で1〜5
// 2. 完了タスクの期限は今日以前
func validateInvariants(priority *int, status TaskStatus, dueDate *time.Time, today time.Time, fe FieldErrors) {
	if priority == nil {
		fe.Add("priority", PriorityRequiredMessage)
	} else if *priority < PriorityHighest || *priority > PriorityLowest {
		fe.Add("priority", PriorityRangeMessage)
	}
	validateDueDate(status, dueDate, today, fe)
}

func validateDueDate(status TaskStatus, dueDate *time.Time, today time.Time, fe FieldErrors) {
	if status == TaskStatusDone && dueDate != nil && dueDate.After(today) {
		fe.Add("due_date", DoneFutureDueMessage)
	}
}

func validateTitle(title string, fe FieldErrors) {
	if strings.TrimSpace(title) == "" {
		fe.Add("title", TitleRequiredMessage)
		return
	}
	if n := utf8.RuneCountInString(title); n > TaskTitleMaxLength {
		fe.Add("title", maxLengthMessage(TaskTitleMaxLength, n))
	}
}

func invalidChoiceMessage(value string) string {
	return fmt.Sprintf("Value '%s' is not a valid choice.", value)
}

// TaskFilter はタスク一覧の絞り込み条件を表す。
// 各条件は独立しており、ゼロ値の条件は適用しない。すべてAND結合される。
type TaskFilter struct {
	Status    TaskStatus // 状態の完全一致
	ProjectID string     // プロジェクトIDの完全一致
	DueBefore *time.Time // due_date <= DueBefore
}

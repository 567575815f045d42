// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"sort"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// バリデーションエラーの場合はFieldsにフィールドごとのメッセージを保持する。
type APIError struct {
	Code     string              // エラーコード
	Message  string              // エラーメッセージ
	Category string              // カテゴリ: auth, validation, project, task, system
	Action   string              // ユーザー向け対処方法
	Fields   map[string][]string // フィールド名 → メッセージ一覧（バリデーション時のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, keys)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeCSRFFailed           = "CSRF_VALIDATION_FAILED"
	ErrCodeProjectNotFound      = "PROJECT_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeInvalidDate          = "INVALID_DATE"
	ErrCodeInvalidProjectID     = "INVALID_PROJECT_ID"
	ErrCodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// FieldErrors はフィールド名ごとのバリデーションメッセージを集約する。
// 最初の違反で打ち切らず、すべての違反を保持する。
type FieldErrors map[string][]string

// Add は指定フィールドにメッセージを追加する。
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// HasErrors は1件以上のエラーがあるかを返す。
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Err はエラーがあればValidationFailedのAPIErrorを、なければnilを返す。
func (fe FieldErrors) Err() error {
	if !fe.HasErrors() {
		return nil
	}
	return NewValidationError(fe)
}

// NewValidationError はフィールドエラーを持つバリデーションエラーを生成する。
func NewValidationError(fields FieldErrors) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "One or more fields are invalid.",
		Category: "validation",
		Action:   "Fix the listed fields and retry.",
		Fields:   fields,
	}
}

// NewAuthenticationFailedError は認証失敗エラーを生成する。
func NewAuthenticationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  "Invalid username or password",
		Category: "auth",
		Action:   "Check your username and password.",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication is required.",
		Category: "auth",
		Action:   "Log in and retry.",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  message,
		Category: "auth",
		Action:   "Ask the project owner to perform this operation.",
	}
}

// NewCSRFFailedError はCSRFトークン検証失敗エラーを生成する。
func NewCSRFFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFFailed,
		Message:  "CSRF token validation failed.",
		Category: "auth",
		Action:   "Fetch a token from /auth/csrf-token and send it in the X-CSRF-Token header.",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("Project not found: %s", projectID),
		Category: "project",
		Action:   "Check the project ID.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Log in again.",
	}
}

// NewInvalidRequestError はJSONボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Invalid JSON format",
		Category: "validation",
		Action:   "Send a well-formed JSON body.",
	}
}

// NewInvalidDateError は日付フォーマット不正エラーを生成する。
func NewInvalidDateError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("Invalid date format: %q. Use YYYY-MM-DD.", value),
		Category: "validation",
		Action:   "Use the YYYY-MM-DD date format.",
	}
}

// NewInvalidProjectIDError はプロジェクトIDの形式不正エラーを生成する。
func NewInvalidProjectIDError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProjectID,
		Message:  fmt.Sprintf("Invalid project id: %q", value),
		Category: "validation",
		Action:   "Pass a project ID returned by the projects API.",
	}
}

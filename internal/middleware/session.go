// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/tracker/internal/model"
)

// SessionCookieName はセッションIDを保持するCookie名。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// authMethodContextKey は認証方式を格納するためのキー。
var authMethodContextKey = contextKey("auth_method")

// AuthMethod はリクエストの認証方式を表す。
type AuthMethod string

const (
	// AuthMethodCookie はセッションCookieによる認証。CSRF検証の対象になる。
	AuthMethodCookie AuthMethod = "cookie"
	// AuthMethodBearer はAuthorizationヘッダーのアクセストークンによる認証。
	AuthMethodBearer AuthMethod = "bearer"
)

// Authenticator はセッションIDまたはアクセストークンからユーザーIDを解決するインターフェース。
// auth.Serviceが実装する。
type Authenticator interface {
	AuthenticateSession(ctx context.Context, sessionID string) (string, error)
	AuthenticateToken(ctx context.Context, token string) (string, error)
}

// NewSessionMiddleware はHTTP Only CookieのセッションまたはBearerトークンを検証するミドルウェアを返す。
// Cookieが存在する場合はCookieを優先する。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// 未認証リクエストには401 UNAUTHORIZEDを返す。
func NewSessionMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				userID string
				method AuthMethod
				err    error
			)

			// 1. CookieまたはAuthorizationヘッダーから認証情報を取得して検証
			if cookie, cerr := r.Cookie(SessionCookieName); cerr == nil && cookie.Value != "" {
				method = AuthMethodCookie
				userID, err = authenticator.AuthenticateSession(r.Context(), cookie.Value)
			} else if token, ok := bearerToken(r); ok {
				method = AuthMethodBearer
				userID, err = authenticator.AuthenticateToken(r.Context(), token)
			} else {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if err != nil || userID == "" {
				if err != nil {
					slog.Debug("authentication rejected",
						slog.String("error", err.Error()),
					)
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. 認証済みユーザーIDをコンテキストに注入
			recordRequestUser(r.Context(), userID)
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			ctx = context.WithValue(ctx, authMethodContextKey, method)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// AuthMethodFromContext はリクエストの認証方式を返す。未認証の場合は空文字列。
func AuthMethodFromContext(ctx context.Context) AuthMethod {
	method, _ := ctx.Value(authMethodContextKey).(AuthMethod)
	return method
}

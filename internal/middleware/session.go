// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/careerfolio/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// セッション全体（ユーザー情報とバックエンドトークン）をリクエスト
// コンテキストに注入する。
// Cookieがない・署名不一致・セッション期限切れのリクエストは
// /signin へリダイレクトする。
func NewSessionMiddleware(sessionFinder SessionFinder, config SessionCookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := resolveSession(r, sessionFinder, config)
			if session == nil {
				http.Redirect(w, r, "/signin", http.StatusSeeOther)
				return
			}

			ctx := ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalSessionMiddleware はセッションがあればコンテキストに注入し、
// なければそのまま通すミドルウェアを返す。
// ログイン状態で表示を変えるページ用。
func NewOptionalSessionMiddleware(sessionFinder SessionFinder, config SessionCookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := resolveSession(r, sessionFinder, config); session != nil {
				r = r.WithContext(ContextWithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveSession はCookieの署名検証とセッションストアの照会を行う。
// 有効なセッションがない場合はnilを返す。
func resolveSession(r *http.Request, sessionFinder SessionFinder, config SessionCookieConfig) *model.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sessionID, err := DecodeSessionCookie(cookie.Value, config.Secret)
	if err != nil {
		slog.Warn("invalid session cookie", slog.String("error", err.Error()))
		return nil
	}

	session, err := sessionFinder.FindByID(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to find session", slog.String("error", err.Error()))
		return nil
	}
	return session
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) (*model.Session, error) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in context")
	}
	return session, nil
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/careerfolio/internal/middleware"
	"github.com/hitoshi/careerfolio/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password string) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	ResetPassword(ctx context.Context, email string) error
	VerifySignup(ctx context.Context, token string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieConfig middleware.SessionCookieConfig
}

// AuthHandler は登録・ログイン・パスワード再設定のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

type authFormData struct {
	pageData
	CSRFToken string
	Email     string
}

// RenderSignup は登録フォームを表示する。
// GET /signup
func (h *AuthHandler) RenderSignup(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "signup", authFormData{
		pageData:  pageData{Title: "新規登録"},
		CSRFToken: middleware.CSRFTokenFromRequest(r),
	})
}

// ProcessSignup は登録フォームの送信を処理する。
// 成功時は確認メール案内ページへリダイレクトする。
// POST /signup
func (h *AuthHandler) ProcessSignup(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if _, err := h.service.SignUp(r.Context(), email, password); err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "signup", authFormData{
			pageData:  pageData{Title: "新規登録", Error: apiErr.Message},
			CSRFToken: middleware.CSRFTokenFromRequest(r),
			Email:     email,
		})
		return
	}

	http.Redirect(w, r, "/verify", http.StatusSeeOther)
}

// RenderSignin はログインフォームを表示する。
// GET /signin
func (h *AuthHandler) RenderSignin(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "signin", authFormData{
		pageData:  pageData{Title: "ログイン"},
		CSRFToken: middleware.CSRFTokenFromRequest(r),
	})
}

// ProcessSignin はログインフォームの送信を処理する。
// 成功時はセッションCookieを設定してダッシュボードへリダイレクトする。
// POST /signin
func (h *AuthHandler) ProcessSignin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	session, err := h.service.SignIn(r.Context(), email, password)
	if err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "signin", authFormData{
			pageData:  pageData{Title: "ログイン", Error: apiErr.Message},
			CSRFToken: middleware.CSRFTokenFromRequest(r),
			Email:     email,
		})
		return
	}

	middleware.SetSessionCookie(w, session.ID, h.config.CookieConfig)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout はセッションを破棄してトップへリダイレクトする。
// セッションがない状態でも成功として扱う。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		sessionID, decodeErr := middleware.DecodeSessionCookie(cookie.Value, h.config.CookieConfig.Secret)
		if decodeErr == nil {
			if logoutErr := h.service.SignOut(r.Context(), sessionID); logoutErr != nil {
				slog.Error("failed to sign out", slog.String("error", logoutErr.Error()))
				// ログアウト失敗してもCookieはクリアする
			}
		}
	}

	middleware.ClearSessionCookie(w, h.config.CookieConfig)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// VerifyNotice は確認メール送信後の案内ページを表示する。
// GET /verify
func (h *AuthHandler) VerifyNotice(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "verify", pageData{Title: "確認メールの送信"})
}

// VerifyCallback は確認メールのリンクからの遷移を処理する。
// type=signupのトークンを検証し、成功時はログイン画面へ誘導する。
// GET /verify-callback?token=xxx&type=signup
func (h *AuthHandler) VerifyCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	verifyType := r.URL.Query().Get("type")

	if verifyType != "signup" || token == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.service.VerifySignup(r.Context(), token); err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "error_page", struct {
			pageData
			Message string
			Action  string
		}{
			pageData: pageData{Title: "メール確認"},
			Message:  apiErr.Message,
			Action:   apiErr.Action,
		})
		return
	}

	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// RenderPasswordReset はパスワード再設定フォームを表示する。
// GET /password-reset
func (h *AuthHandler) RenderPasswordReset(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "password_reset", authFormData{
		pageData:  pageData{Title: "パスワード再設定"},
		CSRFToken: middleware.CSRFTokenFromRequest(r),
	})
}

// ProcessPasswordReset はパスワード再設定フォームの送信を処理する。
// アカウントの存在有無に関わらず、常に同じ確認ページを表示する。
// POST /password-reset
func (h *AuthHandler) ProcessPasswordReset(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	if err := h.service.ResetPassword(r.Context(), email); err != nil {
		apiErr := asAPIError(err)
		renderPage(w, mapAPIErrorToHTTPStatus(apiErr), "password_reset", authFormData{
			pageData:  pageData{Title: "パスワード再設定", Error: apiErr.Message},
			CSRFToken: middleware.CSRFTokenFromRequest(r),
		})
		return
	}

	renderPage(w, http.StatusOK, "password_reset_sent", pageData{Title: "パスワード再設定"})
}

package handler

import (
	"net/http"

	"github.com/hitoshi/careerfolio/internal/middleware"
)

// PagesHandler は認証状態に応じた静的ページのHTTPハンドラー。
type PagesHandler struct{}

// NewPagesHandler はPagesHandlerを生成する。
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Home はトップページを表示する。
// ログイン済みの場合はダッシュボードへリダイレクトする。
// GET /
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.SessionFromContext(r.Context()); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	renderPage(w, http.StatusOK, "home", pageData{Title: "ようこそ"})
}

type dashboardData struct {
	pageData
	UserEmail string
}

// Dashboard はログイン後のダッシュボードを表示する。
// GET /dashboard
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, err := middleware.SessionFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	renderPage(w, http.StatusOK, "dashboard", dashboardData{
		pageData:  pageData{Title: "ダッシュボード"},
		UserEmail: session.User.Email,
	})
}

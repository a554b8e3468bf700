package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/careerfolio/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	CookieConfig  middleware.SessionCookieConfig
	CSRFConfig    middleware.CSRFConfig
	RateLimiter   *middleware.RateLimiter
	Logger        *slog.Logger

	// サービス
	AuthService    AuthServiceInterface
	ProfileService ProfileServiceInterface
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CSRF
//
// 認証が必要なページはさらに Session → RateLimit(General) を通る。
// 認証エンドポイントのPOSTはIP単位のレート制限を通る。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, AuthHandlerConfig{CookieConfig: deps.CookieConfig})
	profileHandler := NewProfileHandler(deps.ProfileService)
	pagesHandler := NewPagesHandler()

	// --- 認証不要のルート ---

	// トップはログイン状態で表示を変えるため、セッションがあれば注入する
	r.With(middleware.NewOptionalSessionMiddleware(deps.SessionFinder, deps.CookieConfig)).
		Get("/", pagesHandler.Home)

	r.Get("/signup", authHandler.RenderSignup)
	r.Get("/signin", authHandler.RenderSignin)
	r.Get("/verify", authHandler.VerifyNotice)
	r.Get("/verify-callback", authHandler.VerifyCallback)
	r.Get("/password-reset", authHandler.RenderPasswordReset)
	r.Get("/logout", authHandler.Logout)

	// 資格情報を受けるPOSTはIP単位のレート制限を通す
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/signup", authHandler.ProcessSignup)
		r.Post("/signin", authHandler.ProcessSignin)
		r.Post("/password-reset", authHandler.ProcessPasswordReset)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.CookieConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/dashboard", pagesHandler.Dashboard)

		r.Get("/profile", profileHandler.Show)
		r.Post("/profile", profileHandler.Upsert)
		r.Delete("/profile", profileHandler.Delete)
		r.Post("/delete_profile", profileHandler.DeleteForm)
	})

	// 死活監視用。認証もレート制限も通さない
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

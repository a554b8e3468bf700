package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/careerfolio/internal/middleware"
	"github.com/hitoshi/careerfolio/internal/model"
)

var testCookieConfig = middleware.SessionCookieConfig{
	Secret: []byte("test-secret"),
	MaxAge: 3600,
}

// mockAuthService はAuthServiceInterfaceのテスト用モック。
type mockAuthService struct {
	signUpFunc        func(ctx context.Context, email, password string) (*model.User, error)
	signInFunc        func(ctx context.Context, email, password string) (*model.Session, error)
	signOutFunc       func(ctx context.Context, sessionID string) error
	resetPasswordFunc func(ctx context.Context, email string) error
	verifySignupFunc  func(ctx context.Context, token string) error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	return m.signUpFunc(ctx, email, password)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	return m.signInFunc(ctx, email, password)
}

func (m *mockAuthService) SignOut(ctx context.Context, sessionID string) error {
	return m.signOutFunc(ctx, sessionID)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email string) error {
	return m.resetPasswordFunc(ctx, email)
}

func (m *mockAuthService) VerifySignup(ctx context.Context, token string) error {
	return m.verifySignupFunc(ctx, token)
}

func newAuthHandler(service *mockAuthService) *AuthHandler {
	return NewAuthHandler(service, AuthHandlerConfig{CookieConfig: testCookieConfig})
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestProcessSignup_Success_RedirectsToVerify(t *testing.T) {
	service := &mockAuthService{
		signUpFunc: func(ctx context.Context, email, password string) (*model.User, error) {
			if email != "user@example.com" {
				t.Errorf("email = %s, want user@example.com", email)
			}
			return &model.User{ID: "uid-1", Email: email}, nil
		},
	}
	h := newAuthHandler(service)

	form := url.Values{}
	form.Set("email", "user@example.com")
	form.Set("password", "password123")
	rec := httptest.NewRecorder()

	h.ProcessSignup(rec, formRequest("/signup", form))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/verify" {
		t.Errorf("Location = %s, want /verify", loc)
	}
}

func TestProcessSignup_DuplicateEmail_ShowsError(t *testing.T) {
	service := &mockAuthService{
		signUpFunc: func(ctx context.Context, email, password string) (*model.User, error) {
			return nil, model.NewDuplicateAccountError()
		},
	}
	h := newAuthHandler(service)

	form := url.Values{}
	form.Set("email", "dup@example.com")
	form.Set("password", "password123")
	rec := httptest.NewRecorder()

	h.ProcessSignup(rec, formRequest("/signup", form))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	body := rec.Body.String()
	if !strings.Contains(body, model.NewDuplicateAccountError().Message) {
		t.Error("重複エラーメッセージが表示されていない")
	}
	// 入力したメールアドレスはフォームに残る
	if !strings.Contains(body, "dup@example.com") {
		t.Error("入力済みメールアドレスがフォームに残っていない")
	}
}

func TestProcessSignin_Success_SetsCookieAndRedirects(t *testing.T) {
	service := &mockAuthService{
		signInFunc: func(ctx context.Context, email, password string) (*model.Session, error) {
			return &model.Session{
				ID:        "sess-1",
				User:      model.User{ID: "uid-1", Email: email},
				Tokens:    model.TokenPair{AccessToken: "access"},
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	h := newAuthHandler(service)

	form := url.Values{}
	form.Set("email", "user@example.com")
	form.Set("password", "password123")
	rec := httptest.NewRecorder()

	h.ProcessSignin(rec, formRequest("/signin", form))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %s, want /dashboard", loc)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("セッションCookieが設定されていない")
	}
	if !sessionCookie.HttpOnly {
		t.Error("セッションCookieがHttpOnlyではない")
	}

	sessionID, err := middleware.DecodeSessionCookie(sessionCookie.Value, testCookieConfig.Secret)
	if err != nil {
		t.Fatalf("Cookie値の署名検証に失敗した: %v", err)
	}
	if sessionID != "sess-1" {
		t.Errorf("セッションID = %s, want sess-1", sessionID)
	}
}

func TestProcessSignin_InvalidCredentials_NoCookie(t *testing.T) {
	service := &mockAuthService{
		signInFunc: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := newAuthHandler(service)

	form := url.Values{}
	form.Set("email", "user@example.com")
	form.Set("password", "wrong")
	rec := httptest.NewRecorder()

	h.ProcessSignin(rec, formRequest("/signin", form))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			t.Error("認証失敗時にセッションCookieが設定された")
		}
	}
	if !strings.Contains(rec.Body.String(), model.NewInvalidCredentialsError().Message) {
		t.Error("認証失敗メッセージが表示されていない")
	}
}

func TestProcessSignin_EmailNotVerified_ShowsError(t *testing.T) {
	service := &mockAuthService{
		signInFunc: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewEmailNotVerifiedError()
		},
	}
	h := newAuthHandler(service)

	form := url.Values{}
	form.Set("email", "user@example.com")
	form.Set("password", "password123")
	rec := httptest.NewRecorder()

	h.ProcessSignin(rec, formRequest("/signin", form))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), model.NewEmailNotVerifiedError().Message) {
		t.Error("メール未確認メッセージが表示されていない")
	}
}

func TestLogout_ClearsCookieAndRedirects(t *testing.T) {
	var signedOutID string
	service := &mockAuthService{
		signOutFunc: func(ctx context.Context, sessionID string) error {
			signedOutID = sessionID
			return nil
		},
	}
	h := newAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: middleware.EncodeSessionCookie("sess-1", testCookieConfig.Secret),
	})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %s, want /", loc)
	}
	if signedOutID != "sess-1" {
		t.Errorf("破棄されたセッションID = %s, want sess-1", signedOutID)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("セッションCookieが破棄されていない")
	}
}

func TestLogout_WithoutSession_StillRedirects(t *testing.T) {
	service := &mockAuthService{
		signOutFunc: func(ctx context.Context, sessionID string) error {
			t.Error("セッションなしでSignOutが呼ばれた")
			return nil
		},
	}
	h := newAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %s, want /", loc)
	}
}

func TestProcessPasswordReset_AlwaysShowsConfirmation(t *testing.T) {
	service := &mockAuthService{
		resetPasswordFunc: func(ctx context.Context, email string) error {
			return nil
		},
	}
	h := newAuthHandler(service)

	form := url.Values{}
	form.Set("email", "nobody@example.com")
	rec := httptest.NewRecorder()

	h.ProcessPasswordReset(rec, formRequest("/password-reset", form))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "登録されている場合") {
		t.Error("存在有無を漏らさない確認文が表示されていない")
	}
}

func TestVerifyCallback_Success_RedirectsToSignin(t *testing.T) {
	var gotToken string
	service := &mockAuthService{
		verifySignupFunc: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	h := newAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/verify-callback?token=tok-123&type=signup", nil)
	rec := httptest.NewRecorder()

	h.VerifyCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin" {
		t.Errorf("Location = %s, want /signin", loc)
	}
	if gotToken != "tok-123" {
		t.Errorf("検証トークン = %s, want tok-123", gotToken)
	}
}

func TestVerifyCallback_UnknownType_RedirectsHome(t *testing.T) {
	service := &mockAuthService{
		verifySignupFunc: func(ctx context.Context, token string) error {
			t.Error("type不一致でVerifySignupが呼ばれた")
			return nil
		},
	}
	h := newAuthHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/verify-callback?token=tok-123&type=recovery", nil)
	rec := httptest.NewRecorder()

	h.VerifyCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %s, want /", loc)
	}
}

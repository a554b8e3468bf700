// Package auth はバックエンド認証APIを使った登録・ログイン・セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/careerfolio/internal/metrics"
	"github.com/hitoshi/careerfolio/internal/model"
	"github.com/hitoshi/careerfolio/internal/repository"
	"github.com/hitoshi/careerfolio/internal/supabase"
)

// BackendAuthAPI はバックエンドの認証エンドポイント群を抽象化する。
// 実装はsupabase.Client。
type BackendAuthAPI interface {
	// SignUp は新規アカウントを作成し、確認メールの送信をトリガーする。
	SignUp(ctx context.Context, email, password string) (*model.User, error)
	// SignInWithPassword はメールアドレスとパスワードで認証し、トークンを取得する。
	SignInWithPassword(ctx context.Context, email, password string) (*model.User, model.TokenPair, error)
	// SignOut はバックエンド側のトークンを失効させる。
	SignOut(ctx context.Context, accessToken string) error
	// ResetPasswordForEmail はパスワード再設定メールの送信を依頼する。
	ResetPasswordForEmail(ctx context.Context, email string) error
	// VerifySignup はメール確認トークンを検証する。
	VerifySignup(ctx context.Context, token string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	backend     BackendAuthAPI
	sessionRepo repository.SessionRepository
	recorder    metrics.Recorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	backend BackendAuthAPI,
	sessionRepo repository.SessionRepository,
	recorder metrics.Recorder,
	config ServiceConfig,
) *Service {
	return &Service{
		backend:     backend,
		sessionRepo: sessionRepo,
		recorder:    recorder,
		config:      config,
	}
}

// SignUp は新規アカウントを作成する。
// 成功してもセッションは発行しない。ユーザーはメール確認を経てからログインする。
func (s *Service) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.backend.SignUp(ctx, email, password)
	if err != nil {
		s.recorder.RecordSignUp(false)
		return nil, mapBackendError(err)
	}

	s.recorder.RecordSignUp(true)
	slog.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// SignIn はメールアドレスとパスワードで認証し、セッションを発行する。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	user, tokens, err := s.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.recorder.RecordSignIn(false)
		return nil, mapBackendError(err)
	}

	session, err := s.createSession(ctx, user, tokens)
	if err != nil {
		s.recorder.RecordSignIn(false)
		slog.Error("failed to create session", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}

	s.recorder.RecordSignIn(true)
	slog.Info("user signed in",
		slog.String("user_id", user.ID),
		slog.String("session_id", session.ID),
	)
	return session, nil
}

// SignOut はセッションを破棄する。
// バックエンド側のトークン失効は試みるが、失敗してもローカルのセッション削除は行う。
// ユーザーから見たログアウトはローカルセッションの破棄で完結するため。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		slog.Error("failed to find session on sign-out", slog.String("error", err.Error()))
	}

	if session != nil {
		if err := s.backend.SignOut(ctx, session.Tokens.AccessToken); err != nil {
			slog.Warn("backend sign-out failed, destroying local session anyway",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		slog.Error("failed to delete session", slog.String("error", err.Error()))
		return model.NewInternalError()
	}

	s.recorder.RecordSessionDestroyed()
	slog.Info("user signed out", slog.String("session_id", sessionID))
	return nil
}

// ResetPassword はパスワード再設定メールの送信を依頼する。
// アカウントの存在有無を漏らさないため、バックエンドの結果に関わらず
// 呼び出し側は常に同じ確認表示を行う想定。バックエンド障害のみエラーを返す。
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	if err := s.backend.ResetPasswordForEmail(ctx, email); err != nil {
		var backendErr *supabase.Error
		if !errors.As(err, &backendErr) {
			return model.NewBackendUnavailableError()
		}
		// 4xxはアカウント不存在等。列挙攻撃を防ぐため成功として扱う
		slog.Info("password reset request rejected by backend",
			slog.Int("status", backendErr.StatusCode),
		)
	}
	return nil
}

// VerifySignup はメール確認トークンを検証する。
func (s *Service) VerifySignup(ctx context.Context, token string) error {
	if err := s.backend.VerifySignup(ctx, token); err != nil {
		return mapBackendError(err)
	}
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, user *model.User, tokens model.TokenPair) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		User:      *user,
		Tokens:    tokens,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// mapBackendError はバックエンドのエラーを利用者向けのAPIErrorに変換する。
// 生のエラーメッセージをそのまま画面に出さないための閉じた分類。
func mapBackendError(err error) *model.APIError {
	var backendErr *supabase.Error
	if !errors.As(err, &backendErr) {
		slog.Error("backend request failed", slog.String("error", err.Error()))
		return model.NewBackendUnavailableError()
	}

	msg := strings.ToLower(backendErr.Message)

	switch {
	case strings.Contains(msg, "invalid login credentials"):
		return model.NewInvalidCredentialsError()
	case strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already been registered"):
		return model.NewDuplicateAccountError()
	case strings.Contains(msg, "email not confirmed"):
		return model.NewEmailNotVerifiedError()
	case strings.Contains(msg, "invalid email"),
		strings.Contains(msg, "validate email"):
		return model.NewInvalidEmailError()
	case strings.Contains(msg, "password"):
		return model.NewWeakPasswordError()
	case backendErr.StatusCode == http.StatusUnauthorized,
		backendErr.StatusCode == http.StatusForbidden:
		return model.NewUnauthorizedError()
	case backendErr.StatusCode >= http.StatusInternalServerError:
		return model.NewBackendUnavailableError()
	default:
		slog.Warn("unmapped backend error",
			slog.Int("status", backendErr.StatusCode),
			slog.String("message", backendErr.Message),
		)
		return model.NewInternalError()
	}
}

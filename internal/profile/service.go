// Package profile はプロフィールの取得・保存・削除のビジネスロジックを提供する。
//
// プロフィールデータ自体はバックエンドのテーブルに保存され、アプリは
// セッションのトークンを都度添えてテーブルAPIを呼び出す。
package profile

import (
	"context"
	"log/slog"

	"github.com/hitoshi/careerfolio/internal/metrics"
	"github.com/hitoshi/careerfolio/internal/model"
	"github.com/hitoshi/careerfolio/internal/security"
)

// Store はプロフィールテーブルへのアクセスを抽象化する。
// 実装はsupabase.ProfileStore。
type Store interface {
	// FindByUserID は指定ユーザーのプロフィール行を取得する。存在しない場合はnilを返す。
	FindByUserID(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error)
	// Upsert はプロフィール行を原子的にUPSERTし、保存後の行を返す。
	Upsert(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error)
	// DeleteByUserID は指定ユーザーのプロフィール行を削除する。
	DeleteByUserID(ctx context.Context, tokens model.TokenPair, userID string) error
}

// FormInput はプロフィールフォームから受け取る入力値。
type FormInput struct {
	Name                string
	Email               string
	Phone               string
	LinkedIn            string
	GitHub              string
	Portfolio           string
	ProfessionalSummary string
}

// Service はプロフィールに関するビジネスロジックを提供する。
type Service struct {
	store     Store
	sanitizer security.FieldSanitizerService
	recorder  metrics.Recorder
}

// NewService はServiceを生成する。
func NewService(store Store, sanitizer security.FieldSanitizerService, recorder metrics.Recorder) *Service {
	return &Service{
		store:     store,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// Get はセッションのユーザーのプロフィールを取得する。
// 未作成の場合はnilを返す（エラーではない）。
func (s *Service) Get(ctx context.Context, session *model.Session) (*model.Profile, error) {
	p, err := s.store.FindByUserID(ctx, session.Tokens, session.User.ID)
	if err != nil {
		slog.Error("failed to fetch profile",
			slog.String("user_id", session.User.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewBackendUnavailableError()
	}
	return p, nil
}

// Save はフォーム入力をサニタイズしてプロフィールとして保存する。
// 既存行の有無に関わらず単一のUPSERTで書き込むため、
// 同時に複数のリクエストが来ても行が重複しない。
func (s *Service) Save(ctx context.Context, session *model.Session, input FormInput) (*model.Profile, error) {
	p := &model.Profile{
		UserID:              session.User.ID,
		Name:                s.sanitizer.SanitizeField(input.Name),
		Email:               s.sanitizer.SanitizeField(input.Email),
		Phone:               s.sanitizer.SanitizeField(input.Phone),
		LinkedIn:            s.sanitizer.SanitizeField(input.LinkedIn),
		GitHub:              s.sanitizer.SanitizeField(input.GitHub),
		Portfolio:           s.sanitizer.SanitizeField(input.Portfolio),
		ProfessionalSummary: s.sanitizer.SanitizeField(input.ProfessionalSummary),
	}

	saved, err := s.store.Upsert(ctx, session.Tokens, p)
	if err != nil {
		slog.Error("failed to upsert profile",
			slog.String("user_id", session.User.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewBackendUnavailableError()
	}

	s.recorder.RecordProfileUpsert()
	slog.Info("profile saved", slog.String("user_id", session.User.ID))
	return saved, nil
}

// Delete はセッションのユーザーのプロフィールを削除する。
// 行が存在しない場合も成功として扱う。
func (s *Service) Delete(ctx context.Context, session *model.Session) error {
	if err := s.store.DeleteByUserID(ctx, session.Tokens, session.User.ID); err != nil {
		slog.Error("failed to delete profile",
			slog.String("user_id", session.User.ID),
			slog.String("error", err.Error()),
		)
		return model.NewBackendUnavailableError()
	}

	s.recorder.RecordProfileDelete()
	slog.Info("profile deleted", slog.String("user_id", session.User.ID))
	return nil
}

package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/careerfolio/internal/metrics"
	"github.com/hitoshi/careerfolio/internal/model"
	"github.com/hitoshi/careerfolio/internal/security"
)

// mockStore はStoreのテスト用モック。
type mockStore struct {
	findByUserIDFunc   func(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error)
	upsertFunc         func(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error)
	deleteByUserIDFunc func(ctx context.Context, tokens model.TokenPair, userID string) error
}

func (m *mockStore) FindByUserID(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error) {
	return m.findByUserIDFunc(ctx, tokens, userID)
}

func (m *mockStore) Upsert(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error) {
	return m.upsertFunc(ctx, tokens, p)
}

func (m *mockStore) DeleteByUserID(ctx context.Context, tokens model.TokenPair, userID string) error {
	return m.deleteByUserIDFunc(ctx, tokens, userID)
}

func testSession() *model.Session {
	return &model.Session{
		ID:     "sess-1",
		User:   model.User{ID: "uid-1", Email: "user@example.com"},
		Tokens: model.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	}
}

func newTestProfileService(store Store) *Service {
	return NewService(store, security.NewFieldSanitizer(), metrics.Nop{})
}

func TestGet_Found(t *testing.T) {
	store := &mockStore{
		findByUserIDFunc: func(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error) {
			if tokens.AccessToken != "access" {
				t.Errorf("AccessToken = %s, want access", tokens.AccessToken)
			}
			if userID != "uid-1" {
				t.Errorf("userID = %s, want uid-1", userID)
			}
			return &model.Profile{UserID: userID, Name: "山田太郎"}, nil
		},
	}
	svc := newTestProfileService(store)

	p, err := svc.Get(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if p.Name != "山田太郎" {
		t.Errorf("Name = %s, want 山田太郎", p.Name)
	}
}

func TestGet_NotFoundReturnsNil(t *testing.T) {
	store := &mockStore{
		findByUserIDFunc: func(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error) {
			return nil, nil
		},
	}
	svc := newTestProfileService(store)

	p, err := svc.Get(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if p != nil {
		t.Errorf("未作成プロフィールで nil 以外が返った: %+v", p)
	}
}

func TestGet_StoreError(t *testing.T) {
	store := &mockStore{
		findByUserIDFunc: func(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestProfileService(store)

	_, err := svc.Get(context.Background(), testSession())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("エラー型 = %T, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeBackendUnavailable {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeBackendUnavailable)
	}
}

func TestSave_SanitizesAndTrimsFields(t *testing.T) {
	var written *model.Profile
	store := &mockStore{
		upsertFunc: func(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error) {
			written = p
			saved := *p
			saved.ID = 1
			return &saved, nil
		},
	}
	svc := newTestProfileService(store)

	input := FormInput{
		Name:                "  山田太郎  ",
		Email:               "taro@example.com",
		Phone:               "090-1234-5678",
		LinkedIn:            "https://linkedin.com/in/taro",
		GitHub:              "https://github.com/taro",
		Portfolio:           "https://taro.example.com",
		ProfessionalSummary: `<script>alert("xss")</script>バックエンドエンジニア`,
	}

	saved, err := svc.Save(context.Background(), testSession(), input)
	if err != nil {
		t.Fatalf("Save がエラーを返した: %v", err)
	}

	if written.UserID != "uid-1" {
		t.Errorf("UserID = %s, want uid-1", written.UserID)
	}
	if written.Name != "山田太郎" {
		t.Errorf("Name = %q, want %q", written.Name, "山田太郎")
	}
	if written.ProfessionalSummary != "バックエンドエンジニア" {
		t.Errorf("ProfessionalSummary = %q, want %q", written.ProfessionalSummary, "バックエンドエンジニア")
	}
	if saved.ID != 1 {
		t.Errorf("保存後のID = %d, want 1", saved.ID)
	}
}

func TestSave_SingleUpsertCall(t *testing.T) {
	calls := 0
	store := &mockStore{
		findByUserIDFunc: func(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error) {
			t.Error("Saveが保存前に読み取りを行った")
			return nil, nil
		},
		upsertFunc: func(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error) {
			calls++
			return p, nil
		},
	}
	svc := newTestProfileService(store)

	_, err := svc.Save(context.Background(), testSession(), FormInput{Name: "山田太郎"})
	if err != nil {
		t.Fatalf("Save がエラーを返した: %v", err)
	}
	if calls != 1 {
		t.Errorf("UPSERT呼び出し回数 = %d, want 1", calls)
	}
}

func TestSave_StoreError(t *testing.T) {
	store := &mockStore{
		upsertFunc: func(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestProfileService(store)

	_, err := svc.Save(context.Background(), testSession(), FormInput{Name: "山田太郎"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("エラー型 = %T, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeBackendUnavailable {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeBackendUnavailable)
	}
}

func TestDelete_Success(t *testing.T) {
	deleted := false
	store := &mockStore{
		deleteByUserIDFunc: func(ctx context.Context, tokens model.TokenPair, userID string) error {
			deleted = true
			if userID != "uid-1" {
				t.Errorf("userID = %s, want uid-1", userID)
			}
			return nil
		},
	}
	svc := newTestProfileService(store)

	if err := svc.Delete(context.Background(), testSession()); err != nil {
		t.Fatalf("Delete がエラーを返した: %v", err)
	}
	if !deleted {
		t.Error("削除が呼ばれていない")
	}
}

func TestDelete_StoreError(t *testing.T) {
	store := &mockStore{
		deleteByUserIDFunc: func(ctx context.Context, tokens model.TokenPair, userID string) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestProfileService(store)

	err := svc.Delete(context.Background(), testSession())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("エラー型 = %T, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeBackendUnavailable {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeBackendUnavailable)
	}
}

package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/careerfolio/internal/model"
)

func testTokens() model.TokenPair {
	return model.TokenPair{AccessToken: "profile-access", RefreshToken: "profile-refresh"}
}

func TestRequestClient_FindProfileByUserID_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("HTTPメソッド = %s, want GET", r.Method)
		}
		if r.URL.Path != "/rest/v1/profiles" {
			t.Errorf("パス = %s, want /rest/v1/profiles", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "eq.uid-1" {
			t.Errorf("user_idフィルタ = %s, want eq.uid-1", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("limit = %s, want 1", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer profile-access" {
			t.Errorf("Authorizationヘッダ = %s, want Bearer profile-access", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Profile{
			{ID: 7, UserID: "uid-1", Name: "山田太郎", Email: "taro@example.com"},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.Client())
	rc := c.WithSession(testTokens())

	p, err := rc.FindProfileByUserID(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("FindProfileByUserID がエラーを返した: %v", err)
	}
	if p == nil {
		t.Fatal("プロフィールが nil で返った")
	}
	if p.Name != "山田太郎" {
		t.Errorf("Name = %s, want 山田太郎", p.Name)
	}
}

func TestRequestClient_FindProfileByUserID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.Client())
	rc := c.WithSession(testTokens())

	p, err := rc.FindProfileByUserID(context.Background(), "uid-none")
	if err != nil {
		t.Fatalf("FindProfileByUserID がエラーを返した: %v", err)
	}
	if p != nil {
		t.Errorf("存在しない行で nil 以外が返った: %+v", p)
	}
}

func TestRequestClient_UpsertProfile_SendsMergeHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("on_conflict"); got != "user_id" {
			t.Errorf("on_conflict = %s, want user_id", got)
		}
		prefer := r.Header.Get("Prefer")
		if !strings.Contains(prefer, "resolution=merge-duplicates") {
			t.Errorf("Preferヘッダ = %s, want contains resolution=merge-duplicates", prefer)
		}
		if !strings.Contains(prefer, "return=representation") {
			t.Errorf("Preferヘッダ = %s, want contains return=representation", prefer)
		}

		var record profileRecord
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			t.Fatalf("リクエストボディのデコードに失敗した: %v", err)
		}
		if record.UserID != "uid-1" {
			t.Errorf("user_id = %s, want uid-1", record.UserID)
		}
		if record.ProfessionalSummary != "バックエンドエンジニア" {
			t.Errorf("professional_summary = %s, want バックエンドエンジニア", record.ProfessionalSummary)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]model.Profile{
			{ID: 11, UserID: record.UserID, Name: record.Name, ProfessionalSummary: record.ProfessionalSummary},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.Client())
	rc := c.WithSession(testTokens())

	saved, err := rc.UpsertProfile(context.Background(), &model.Profile{
		UserID:              "uid-1",
		Name:                "山田太郎",
		ProfessionalSummary: "バックエンドエンジニア",
	})
	if err != nil {
		t.Fatalf("UpsertProfile がエラーを返した: %v", err)
	}
	if saved.ID != 11 {
		t.Errorf("ID = %d, want 11", saved.ID)
	}
	if saved.Name != "山田太郎" {
		t.Errorf("Name = %s, want 山田太郎", saved.Name)
	}
}

func TestRequestClient_UpsertProfile_OmitsRowID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Fatalf("リクエストボディのデコードに失敗した: %v", err)
		}
		if _, ok := raw["id"]; ok {
			t.Error("書き込みペイロードに id が含まれている")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]model.Profile{{ID: 1, UserID: "uid-1"}})
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.Client())
	rc := c.WithSession(testTokens())

	// 取得済みの行（ID入り）を再保存しても行識別子は送られない
	_, err := rc.UpsertProfile(context.Background(), &model.Profile{ID: 99, UserID: "uid-1"})
	if err != nil {
		t.Fatalf("UpsertProfile がエラーを返した: %v", err)
	}
}

func TestRequestClient_DeleteProfileByUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("HTTPメソッド = %s, want DELETE", r.Method)
		}
		if got := r.URL.Query().Get("user_id"); got != "eq.uid-1" {
			t.Errorf("user_idフィルタ = %s, want eq.uid-1", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.Client())
	rc := c.WithSession(testTokens())

	if err := rc.DeleteProfileByUserID(context.Background(), "uid-1"); err != nil {
		t.Fatalf("DeleteProfileByUserID がエラーを返した: %v", err)
	}
}

func TestProfileStore_BridgesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer store-access" {
			t.Errorf("Authorizationヘッダ = %s, want Bearer store-access", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.Client())
	store := NewProfileStore(c)

	tokens := model.TokenPair{AccessToken: "store-access", RefreshToken: "r"}
	p, err := store.FindByUserID(context.Background(), tokens, "uid-5")
	if err != nil {
		t.Fatalf("FindByUserID がエラーを返した: %v", err)
	}
	if p != nil {
		t.Errorf("存在しない行で nil 以外が返った: %+v", p)
	}
}

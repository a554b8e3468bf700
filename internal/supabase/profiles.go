package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hitoshi/careerfolio/internal/model"
)

// profilesPath はプロフィールテーブルのPostgRESTパス。
const profilesPath = restBasePath + "/profiles"

// profileRecord はUPSERT時の書き込みペイロードを表す。
// 行識別子はバックエンドが採番するため含めない。
type profileRecord struct {
	UserID              string `json:"user_id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	LinkedIn            string `json:"linkedin"`
	GitHub              string `json:"github"`
	Portfolio           string `json:"portfolio"`
	ProfessionalSummary string `json:"professional_summary"`
}

// FindProfileByUserID は指定ユーザーのプロフィール行を取得する。
// 行が存在しない場合はnilを返す。
func (rc *RequestClient) FindProfileByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", "eq."+userID)
	query.Set("limit", "1")

	var rows []model.Profile
	err := rc.client.do(ctx, "rest_profiles_select", http.MethodGet, profilesPath,
		query, rc.tokens.AccessToken, nil, nil, &rows,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertProfile はプロフィール行を単一の原子的UPSERTとして書き込む。
// user_idのユニーク制約に対するmerge-duplicatesにより、既存行があれば
// 更新・なければ挿入がバックエンド側で1回の操作として行われる
// （読んでから書く方式は同時リクエストで行が重複しうるため使わない）。
// 書き込み後の行を返す。
func (rc *RequestClient) UpsertProfile(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	query := url.Values{}
	query.Set("on_conflict", "user_id")

	headers := map[string]string{
		"Prefer": "resolution=merge-duplicates,return=representation",
	}

	record := profileRecord{
		UserID:              p.UserID,
		Name:                p.Name,
		Email:               p.Email,
		Phone:               p.Phone,
		LinkedIn:            p.LinkedIn,
		GitHub:              p.GitHub,
		Portfolio:           p.Portfolio,
		ProfessionalSummary: p.ProfessionalSummary,
	}

	var rows []model.Profile
	err := rc.client.do(ctx, "rest_profiles_upsert", http.MethodPost, profilesPath,
		query, rc.tokens.AccessToken, headers, record, &rows,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// return=representationを指定しているため通常は到達しない
		return nil, &Error{StatusCode: 0, Message: "UPSERTのレスポンスに行が含まれていません"}
	}
	return &rows[0], nil
}

// DeleteProfileByUserID は指定ユーザーのプロフィール行を削除する。
// 対象行が存在しない場合も成功として扱う（PostgRESTは0行削除を成功で返す）。
func (rc *RequestClient) DeleteProfileByUserID(ctx context.Context, userID string) error {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)

	return rc.client.do(ctx, "rest_profiles_delete", http.MethodDelete, profilesPath,
		query, rc.tokens.AccessToken, nil, nil, nil,
	)
}

// ProfileStore はセッショントークンを都度受け取ってテーブルAPIを呼び出すアダプタ。
// profileパッケージのStoreインターフェースを実装する。
type ProfileStore struct {
	client *Client
}

// NewProfileStore はProfileStoreを生成する。
func NewProfileStore(c *Client) *ProfileStore {
	return &ProfileStore{client: c}
}

// FindByUserID は指定ユーザーのプロフィール行を取得する。存在しない場合はnilを返す。
func (s *ProfileStore) FindByUserID(ctx context.Context, tokens model.TokenPair, userID string) (*model.Profile, error) {
	return s.client.WithSession(tokens).FindProfileByUserID(ctx, userID)
}

// Upsert はプロフィール行を原子的にUPSERTする。
func (s *ProfileStore) Upsert(ctx context.Context, tokens model.TokenPair, p *model.Profile) (*model.Profile, error) {
	return s.client.WithSession(tokens).UpsertProfile(ctx, p)
}

// DeleteByUserID は指定ユーザーのプロフィール行を削除する。
func (s *ProfileStore) DeleteByUserID(ctx context.Context, tokens model.TokenPair, userID string) error {
	return s.client.WithSession(tokens).DeleteProfileByUserID(ctx, userID)
}

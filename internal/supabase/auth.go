package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hitoshi/careerfolio/internal/model"
)

// credentials はメールアドレスとパスワードの組を表す。
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authUser は認証APIが返すユーザーオブジェクトのうち必要なフィールド。
type authUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// signInResponse はパスワードグラントのトークンレスポンスを表す。
type signInResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         authUser `json:"user"`
}

// SignUp は新規アカウントを作成する。
// メール確認が完了するまでアカウントはサインインに使用できない。
func (c *Client) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	var user authUser
	err := c.do(ctx, "auth_signup", http.MethodPost, authBasePath+"/signup",
		nil, "", nil,
		credentials{Email: email, Password: password}, &user,
	)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: user.ID, Email: user.Email}, nil
}

// SignInWithPassword はメールアドレスとパスワードでサインインし、
// ユーザー識別情報とトークンペアを返す。
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*model.User, model.TokenPair, error) {
	query := url.Values{}
	query.Set("grant_type", "password")

	var resp signInResponse
	err := c.do(ctx, "auth_signin", http.MethodPost, authBasePath+"/token",
		query, "", nil,
		credentials{Email: email, Password: password}, &resp,
	)
	if err != nil {
		return nil, model.TokenPair{}, err
	}

	user := &model.User{ID: resp.User.ID, Email: resp.User.Email}
	tokens := model.TokenPair{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	return user, tokens, nil
}

// SignOut はバックエンド側のセッションを失効させる。
// サーバーサイドセッションの破棄は呼び出し側の責務（バックエンドの失敗に
// かかわらず破棄する）。
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, "auth_signout", http.MethodPost, authBasePath+"/logout",
		nil, accessToken, nil, nil, nil,
	)
}

// GetUser はアクセストークンに対応する現在のユーザー識別情報を取得する。
func (c *Client) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	var user authUser
	err := c.do(ctx, "auth_get_user", http.MethodGet, authBasePath+"/user",
		nil, accessToken, nil, nil, &user,
	)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: user.ID, Email: user.Email}, nil
}

// ResetPasswordForEmail はパスワードリセットメールの送信を要求する。
func (c *Client) ResetPasswordForEmail(ctx context.Context, email string) error {
	return c.do(ctx, "auth_recover", http.MethodPost, authBasePath+"/recover",
		nil, "", nil,
		struct {
			Email string `json:"email"`
		}{Email: email}, nil,
	)
}

// VerifySignup はメール確認トークンをバックエンドに転送し、
// サインアップの確認を完了させる。トークンの形式検証は行わない。
func (c *Client) VerifySignup(ctx context.Context, token string) error {
	return c.do(ctx, "auth_verify", http.MethodPost, authBasePath+"/verify",
		nil, "", nil,
		struct {
			Type  string `json:"type"`
			Token string `json:"token"`
		}{Type: "signup", Token: token}, nil,
	)
}

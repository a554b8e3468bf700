// Package model はドメインモデルを定義する。
package model

import "time"

// User はバックエンド認証サービスが発行したユーザー識別情報のスナップショットを表す。
// IDはバックエンド側で採番されたUUID文字列。
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenPair はバックエンドが発行した不透明なベアラー資格情報のペアを表す。
// アプリケーションはこれを解析・検証せず、保存と再提示のみを行う。
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Session はユーザーのログインセッションを表す。
// サインイン成功時に作成され、ログアウトで破棄される。
// バックエンドのトークンペアを保持し、リクエストごとにバックエンドへ再提示される。
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Tokens    TokenPair `json:"tokens"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile はキャリアプロフィールの1行を表す。
// user_idごとに最大1行（バックエンドのユニーク制約で保証する）。
// IDはバックエンドが採番する行識別子。
type Profile struct {
	ID                  int64  `json:"id,omitempty"`
	UserID              string `json:"user_id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	LinkedIn            string `json:"linkedin"`
	GitHub              string `json:"github"`
	Portfolio           string `json:"portfolio"`
	ProfessionalSummary string `json:"professional_summary"`
}

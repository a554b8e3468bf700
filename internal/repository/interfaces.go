// Package repository はセッションデータ永続化のインターフェースを定義する。
// プロフィール等のアプリケーションデータはバックエンドが保持するため、
// ここで扱うのはアプリ自身が管理するセッションのみ。
package repository

import (
	"context"

	"github.com/hitoshi/careerfolio/internal/model"
)

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。見つからない・期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/careerfolio/internal/model"
)

const (
	sessionKeyPrefix   = "careerfolio:session:"
	userIndexKeyPrefix = "careerfolio:user_sessions:"
)

// RedisSessionRepository はRedisを使ったSessionRepositoryの実装。
// セッション本体はJSONで保存し、TTLで期限切れを自動削除する。
// ユーザーID→セッションIDの索引をSetで持ち、全セッション削除に使う。
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository はRedisSessionRepositoryを作成する。
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userIndexKey(userID string) string {
	return userIndexKeyPrefix + userID
}

// Create はセッションを作成する。
func (r *RedisSessionRepository) Create(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("セッションのシリアライズに失敗しました: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("セッションの有効期限が過去になっています")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, ttl)
	pipe.SAdd(ctx, userIndexKey(session.User.ID), session.ID)
	// 索引はセッションより長く残ってよいが、放置はしない
	pipe.Expire(ctx, userIndexKey(session.User.ID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。見つからない・期限切れの場合はnilを返す。
func (r *RedisSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("セッションのデシリアライズに失敗しました: %w", err)
	}

	// TTLと期限がずれた場合に備えた確認
	if time.Now().After(session.ExpiresAt) {
		return nil, nil
	}
	return &session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *RedisSessionRepository) DeleteByID(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	if session != nil {
		pipe.SRem(ctx, userIndexKey(session.User.ID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *RedisSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("セッション索引の取得に失敗しました: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.Del(ctx, userIndexKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("セッションの一括削除に失敗しました: %w", err)
	}
	return nil
}

package flow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hatcher/tasks/pkg/redisx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "tasks-flow-session:"

// RedisStore 多实例部署时的会话存储，TTL 与会话截止时间对齐，
// 过期清理由 redis 自行完成。
type RedisStore struct {
	cli redisx.Redis
}

func NewRedisStore(cli redisx.Redis) *RedisStore {
	return &RedisStore{cli: cli}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (r *RedisStore) Save(ctx context.Context, session *Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return errors.WithMessagef(err, "序列化会话失败, user:%s", session.UserID)
	}
	ttl := session.Remaining(time.Now())
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.cli.Set(ctx, sessionKey(session.UserID), string(b), ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	val, err := r.cli.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.WithMessagef(err, "读取会话失败, user:%s", userID)
	}
	var session Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, errors.WithMessagef(err, "反序列化会话失败, user:%s", userID)
	}
	return &session, nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	return r.cli.Del(ctx, sessionKey(userID)).Err()
}

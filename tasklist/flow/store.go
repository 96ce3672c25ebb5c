package flow

import (
	"context"
	"fmt"

	"github.com/hatcher/tasks/pkg/redisx"
	"github.com/hatcher/tasks/pkg/util"
)

// Store 会话存储。Get 未命中时返回 (nil, nil)。
// 按 user_id 一人一席，Save 直接覆盖旧会话（last-writer-wins）。
type Store interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
}

type StoreConfig struct {
	Type   string                 `json:"type" yaml:"type" mapstructure:"type"`
	Option map[string]interface{} `json:"option" yaml:"option" mapstructure:"option"`
}

// NewSessionStore 按配置构建会话存储
func NewSessionStore(cfg StoreConfig) (Store, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryStore(), nil
	case "redis":
		redisConfig, err := util.Convert[redisx.RedisConfig](cfg.Option)
		if err != nil {
			return nil, err
		}
		redisCli, err := redisx.NewRedis(*redisConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initial redis session store client: %s", err)
		}
		return NewRedisStore(redisCli), nil
	default:
		return nil, fmt.Errorf("failed to initial session store client: %s", cfg.Type)
	}
}

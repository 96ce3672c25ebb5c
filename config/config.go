package config

import (
	"time"

	"github.com/hatcher/tasks/pkg/cfg"
	"github.com/hatcher/tasks/pkg/logs"
	"github.com/hatcher/tasks/pkg/ormx"
	"github.com/hatcher/tasks/pkg/schedule"
	"github.com/hatcher/tasks/tasklist/flow"
	"github.com/hatcher/tasks/tasklist/service"
)

// FlowConfig 多步交互会话配置
type FlowConfig struct {
	Store             flow.StoreConfig         `json:"store" yaml:"store" mapstructure:"store"`
	SessionTTLSeconds int                      `json:"sessionTtlSeconds" yaml:"session-ttl-seconds" mapstructure:"session-ttl-seconds"`
	Sweep             schedule.ScheduledConfig `json:"sweep" yaml:"sweep" mapstructure:"sweep"`
}

// Config 顶层配置，由嵌入方的配置文件加载
type Config struct {
	DB   ormx.DBConfig  `json:"db" yaml:"db" mapstructure:"db"`
	Log  logs.LogConfig `json:"log" yaml:"log" mapstructure:"log"`
	Flow FlowConfig     `json:"flow" yaml:"flow" mapstructure:"flow"`
}

// NewTracker 按配置构建交互跟踪器：会话存储、会话存活时间、过期清扫一次装配完成。
// SessionTTLSeconds 不配置（<=0）时使用默认存活时间。
func NewTracker(svc *service.TaskService, c FlowConfig) (*flow.Tracker, error) {
	store, err := flow.NewSessionStore(c.Store)
	if err != nil {
		return nil, err
	}
	tracker := flow.NewTrackerWithTTL(svc, store, time.Duration(c.SessionTTLSeconds)*time.Second)
	tracker.StartSweeper(c.Sweep)
	return tracker, nil
}

// Load 加载配置并初始化日志
func Load(configDir, configFile string) (*Config, error) {
	var c Config
	if err := cfg.LoadConfig(configDir, configFile, "yaml", &c); err != nil {
		return nil, err
	}
	if err := logs.InitLogger(c.Log, "tasks.log"); err != nil {
		return nil, err
	}
	return &c, nil
}

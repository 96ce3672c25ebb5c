package schedule

import (
	"strconv"
	"time"

	"github.com/hatcher/tasks/pkg/logs"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	quit chan struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		quit: make(chan struct{}),
	}
}

// Stop 停止所有已注册的定时任务
func (worker *Scheduler) Stop() {
	close(worker.quit)
}

type ScheduledConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Type    string `json:"type" yaml:"type" mapstructure:"type"`
	Value   string `json:"value" yaml:"value" mapstructure:"value"`
}

// AddScheduledTask 添加定时任务
func (worker *Scheduler) AddScheduledTask(name string, config ScheduledConfig, method func()) {
	if !config.Enabled {
		logs.Infof("%s 定时任务未启用", name)
		return
	}
	scheduledType := config.Type
	scheduledValue := config.Value
	if scheduledValue == "" {
		logs.Errorf("%s 定时任务未配置执行频率，sceduleType:%s", name, scheduledType)
		return
	}
	if scheduledType == "cron" {
		worker.AddCronTask(scheduledValue, method)
	} else if scheduledType == "fixed_delay" {
		interval, err := strconv.ParseInt(scheduledValue, 10, 64)
		if err != nil {
			logs.Errorf("%s 定时任务执行频率错误，仅可为数字，sceduleType:%s, sceduleValue:%s", name, scheduledType, scheduledValue)
			return
		}
		worker.AddFixDelayTask(interval, method)
	} else {
		logs.Errorf("%s 定时任务类型错误，scheduleType: %s , 仅支持（fixed_delay 或者 cron）", name, scheduledType)
	}
}

// AddCronTask 添加cron任务
func (worker *Scheduler) AddCronTask(cronString string, method func()) {
	cronTask := cron.New(cron.WithSeconds())
	_, err := cronTask.AddFunc(cronString, method)
	if err != nil {
		logs.Errorf("定时任务Cron表达式错误: %v", err)
		return
	}
	go func() {
		cronTask.Start()
		defer cronTask.Stop()

		select {
		case <-worker.quit:
			return
		}
	}()
}

// AddFixDelayTask 添加固定延迟任务
func (worker *Scheduler) AddFixDelayTask(interval int64, method func()) {
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-worker.quit:
				return
			case <-ticker.C:
				method()
			}
		}
	}()
}

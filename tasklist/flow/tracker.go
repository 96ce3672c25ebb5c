package flow

import (
	"context"
	"time"

	"github.com/hatcher/tasks/pkg/logs"
	"github.com/hatcher/tasks/pkg/resp"
	"github.com/hatcher/tasks/pkg/safego"
	"github.com/hatcher/tasks/pkg/schedule"
	"github.com/hatcher/tasks/pkg/util"
	"github.com/hatcher/tasks/tasklist/entity"
	"github.com/hatcher/tasks/tasklist/service"
	"github.com/pkg/errors"
)

// Input 表现层转发的一次用户动作，三个字段按所处步骤取其一
type Input struct {
	ListID int64  `json:"listId,omitempty"`
	TaskID int64  `json:"taskId,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Prompt 返回给表现层的渲染数据
type Prompt struct {
	Step    Step               `json:"step"`
	Message string             `json:"message,omitempty"`
	Lists   []*entity.TaskList `json:"lists,omitempty"`
	Tasks   []entity.Task      `json:"tasks,omitempty"`
	Task    *entity.Task       `json:"task,omitempty"`
	Done    bool               `json:"done"`
}

// Sweeper 支持主动清理过期会话的存储（内存实现；redis 靠 TTL 自清理）
type Sweeper interface {
	Sweep(now time.Time) int
}

// Tracker 把一串异步的用户选择关联成一次原子修改。
// 每个用户动作是一次独立调用，靠 store 里的会话续接，不靠栈上的续延。
type Tracker struct {
	svc   *service.TaskService
	store Store
	ttl   time.Duration
	sched *schedule.Scheduler
}

func NewTracker(svc *service.TaskService, store Store) *Tracker {
	return NewTrackerWithTTL(svc, store, DefaultSessionTTL)
}

func NewTrackerWithTTL(svc *service.TaskService, store Store, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Tracker{
		svc:   svc,
		store: store,
		ttl:   ttl,
		sched: schedule.NewScheduler(),
	}
}

// BeginFlow 开始一次多步流程。清单列表此刻从存储层取，不用缓存。
// 同一用户已有会话时直接覆盖（同一时刻只有一个 UI 界面）。
func (t *Tracker) BeginFlow(ctx context.Context, userID string, kind Kind) (*Prompt, error) {
	if !kind.Valid() {
		return nil, resp.NewError(resp.KindValidation, "未知的操作类型：%s", kind)
	}
	lists, err := t.svc.GetUserLists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return &Prompt{Step: StepIdle, Message: "你还没有任何清单"}, nil
	}

	session := NewSession(userID, kind, t.ttl)
	if err := t.store.Save(ctx, session); err != nil {
		return nil, errors.WithMessagef(err, "保存会话失败, user:%s", userID)
	}
	logs.Debugf("开始流程 %s, user:%s, session:%s", kind, userID, session.ID)
	return &Prompt{
		Step:    StepAwaitingListSelection,
		Message: "请选择一个清单",
		Lists:   lists,
	}, nil
}

// Advance 推进流程一步。会话不存在或已过期都按过期处理，且不产生任何修改。
func (t *Tracker) Advance(ctx context.Context, userID string, input Input) (*Prompt, error) {
	session, err := t.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, resp.NewError(resp.KindSessionExpired, "当前没有进行中的操作，请重新开始")
	}
	now := time.Now()
	if session.Expired(now) {
		t.discard(ctx, userID)
		return nil, resp.NewError(resp.KindSessionExpired, "操作已超时，请重新开始")
	}
	logs.Debugf("推进流程, user:%s, session:%s", userID, util.ToJsonIgnoreError(session))

	switch session.Step {
	case StepAwaitingListSelection:
		return t.advanceListSelection(ctx, session, input, now)
	case StepAwaitingTaskSelection:
		return t.advanceTaskSelection(ctx, session, input, now)
	case StepAwaitingTextInput:
		return t.advanceTextInput(ctx, session, input)
	default:
		t.discard(ctx, userID)
		return nil, resp.NewError(resp.KindValidation, "会话状态异常：%s", session.Step)
	}
}

func (t *Tracker) advanceListSelection(ctx context.Context, session *Session, input Input, now time.Time) (*Prompt, error) {
	if input.ListID <= 0 {
		return nil, resp.NewError(resp.KindValidation, "请先选择一个清单")
	}
	// 选择与持久化状态没有事务关联，使用前重新确认清单还在
	list, err := t.svc.GetList(ctx, input.ListID)
	if err != nil {
		return t.cancelWith(ctx, session.UserID, err)
	}
	// 归属是唯一的访问边界，他人的清单一律按不存在处理
	if list.UserDiscordID != session.UserID {
		return t.cancelWith(ctx, session.UserID,
			resp.NewError(resp.KindNotFound, "清单不存在, id:%d", input.ListID))
	}
	session.SelectedListID = list.ID
	session.Touch(now, t.ttl)

	if session.Kind.NeedsTask() {
		if len(list.Tasks) == 0 {
			t.discard(ctx, session.UserID)
			return nil, resp.NewError(resp.KindValidation, "清单『%s』还没有任务", list.Name)
		}
		session.Step = StepAwaitingTaskSelection
		if err := t.store.Save(ctx, session); err != nil {
			return nil, err
		}
		return &Prompt{
			Step:    StepAwaitingTaskSelection,
			Message: "请选择一条任务",
			Tasks:   list.Tasks,
		}, nil
	}

	// 只需要清单的流程（加任务）直接进入文本输入
	session.Step = StepAwaitingTextInput
	if err := t.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &Prompt{
		Step:    StepAwaitingTextInput,
		Message: "请输入任务描述",
	}, nil
}

func (t *Tracker) advanceTaskSelection(ctx context.Context, session *Session, input Input, now time.Time) (*Prompt, error) {
	if input.TaskID <= 0 {
		return nil, resp.NewError(resp.KindValidation, "请先选择一条任务")
	}
	// 清单可能在两步之间被并发删除，重新校验（归属同样重新确认）
	list, err := t.svc.GetList(ctx, session.SelectedListID)
	if err != nil {
		return t.cancelWith(ctx, session.UserID, err)
	}
	if list.UserDiscordID != session.UserID {
		return t.cancelWith(ctx, session.UserID,
			resp.NewError(resp.KindNotFound, "清单不存在, id:%d", session.SelectedListID))
	}
	var picked *entity.Task
	for i := range list.Tasks {
		if list.Tasks[i].ID == input.TaskID {
			picked = &list.Tasks[i]
			break
		}
	}
	if picked == nil {
		return t.cancelWith(ctx, session.UserID,
			resp.NewError(resp.KindNotFound, "任务不存在或已被删除, id:%d", input.TaskID))
	}
	session.SelectedTaskID = picked.ID
	session.Touch(now, t.ttl)

	// 删除任务不需要文本，选中即完成
	if !session.Kind.NeedsText() {
		if _, err := t.svc.DeleteTask(ctx, picked.ID); err != nil {
			return t.cancelWith(ctx, session.UserID, err)
		}
		t.discard(ctx, session.UserID)
		return &Prompt{Step: StepCompleted, Message: "任务已删除", Done: true}, nil
	}

	session.Step = StepAwaitingTextInput
	if err := t.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &Prompt{
		Step:    StepAwaitingTextInput,
		Message: "请输入新的任务描述",
	}, nil
}

func (t *Tracker) advanceTextInput(ctx context.Context, session *Session, input Input) (*Prompt, error) {
	var task *entity.Task
	var err error
	var doneMsg string
	switch session.Kind {
	case KindAddTask:
		task, err = t.svc.AddTask(ctx, input.Text, session.SelectedListID)
		doneMsg = "任务已添加"
	case KindEditTask:
		task, err = t.svc.UpdateTaskDescription(ctx, session.SelectedTaskID, input.Text)
		doneMsg = "任务已更新"
	default:
		t.discard(ctx, session.UserID)
		return nil, resp.NewError(resp.KindValidation, "流程 %s 不接受文本输入", session.Kind)
	}
	if err != nil {
		if resp.KindOf(err) == resp.KindValidation {
			// 校验失败不丢会话：停在当前步骤重新提示，截止时间不顺延
			var te *resp.Error
			msg := "输入不合法，请重试"
			if errors.As(err, &te) {
				msg = te.UserMessage()
			}
			return &Prompt{Step: StepAwaitingTextInput, Message: msg}, nil
		}
		return t.cancelWith(ctx, session.UserID, err)
	}

	t.discard(ctx, session.UserID)
	return &Prompt{Step: StepCompleted, Message: doneMsg, Task: task, Done: true}, nil
}

// Cancel 用户主动取消，幂等
func (t *Tracker) Cancel(ctx context.Context, userID string) error {
	return t.store.Delete(ctx, userID)
}

// cancelWith 下游出错后的统一收尾：销毁会话、透传错误，绝不留悬挂会话
func (t *Tracker) cancelWith(ctx context.Context, userID string, err error) (*Prompt, error) {
	t.discard(ctx, userID)
	return nil, err
}

func (t *Tracker) discard(ctx context.Context, userID string) {
	if err := t.store.Delete(ctx, userID); err != nil {
		logs.Warnf("清理会话失败, user:%s, err:%v", userID, err)
	}
}

// StartSweeper 启动过期会话的周期清扫（仅内存存储需要，redis 靠 TTL）
func (t *Tracker) StartSweeper(cfg schedule.ScheduledConfig) {
	sweeper, ok := t.store.(Sweeper)
	if !ok {
		logs.Infof("会话存储自带过期清理，跳过清扫任务")
		return
	}
	t.sched.AddScheduledTask("flow-session-sweep", cfg, func() {
		defer safego.Recovery(context.Background())
		if n := sweeper.Sweep(time.Now()); n > 0 {
			logs.Infof("清理过期会话 %d 个", n)
		}
	})
}

// StopSweeper 停止清扫任务
func (t *Tracker) StopSweeper() {
	t.sched.Stop()
}

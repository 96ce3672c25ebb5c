package flow

import (
	"time"

	"github.com/hatcher/tasks/pkg/util"
)

// Kind 多步交互流程类型
type Kind string

const (
	KindAddTask    Kind = "add_task"
	KindEditTask   Kind = "edit_task"
	KindDeleteTask Kind = "delete_task"
)

// NeedsTask 该流程是否需要先选中一条任务
func (k Kind) NeedsTask() bool {
	return k == KindEditTask || k == KindDeleteTask
}

// NeedsText 该流程是否需要用户提交文本
func (k Kind) NeedsText() bool {
	return k == KindAddTask || k == KindEditTask
}

func (k Kind) Valid() bool {
	switch k {
	case KindAddTask, KindEditTask, KindDeleteTask:
		return true
	}
	return false
}

// Step 会话所处的状态
type Step string

const (
	StepIdle                  Step = "idle"
	StepAwaitingListSelection Step = "awaiting_list_selection"
	StepAwaitingTaskSelection Step = "awaiting_task_selection"
	StepAwaitingTextInput     Step = "awaiting_text_input"
	StepCompleted             Step = "completed"
	StepCancelled             Step = "cancelled"
	StepExpired               Step = "expired"
)

// DefaultSessionTTL 无后续输入时会话的存活时间
const DefaultSessionTTL = 60 * time.Second

// Session 一次多步交互的临时状态，仅存在于 tracker 的 store 中，
// 对清单/任务只按ID弱引用，使用前必须回存储层重新校验。
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Kind           Kind      `json:"kind"`
	Step           Step      `json:"step"`
	SelectedListID int64     `json:"selectedListId,omitempty"`
	SelectedTaskID int64     `json:"selectedTaskId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func NewSession(userID string, kind Kind, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        util.GenerateShortID(),
		UserID:    userID,
		Kind:      kind,
		Step:      StepAwaitingListSelection,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired 截止时间是否已过。deadline 是建议性的，每次使用都要检查。
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch 收到新输入后顺延截止时间
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.ExpiresAt = now.Add(ttl)
}

// Remaining 剩余存活时间
func (s *Session) Remaining(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hatcher/tasks/pkg/logs"
	"github.com/hatcher/tasks/pkg/resp"
	"github.com/hatcher/tasks/tasklist/entity"
	"github.com/hatcher/tasks/tasklist/repository"
	"github.com/pkg/errors"
)

const (
	MaxListNameLen    = 100
	MaxDescriptionLen = 500
)

// TaskService 在存储层之上做输入校验与结果翻译，
// 常见失败（校验、重名）转为 (ok, message) 结果，存储故障保留为错误。
type TaskService struct {
	repo *repository.Repository
}

func NewTaskService(repo *repository.Repository) *TaskService {
	return &TaskService{repo: repo}
}

// ValidateListName 校验清单名称，返回修剪后的名称
func ValidateListName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", resp.NewError(resp.KindValidation, "清单名称不能为空")
	}
	if utf8.RuneCountInString(trimmed) > MaxListNameLen {
		return "", resp.NewError(resp.KindValidation, "清单名称过长（最多%d个字符）", MaxListNameLen)
	}
	return trimmed, nil
}

// ValidateDescription 校验任务描述，返回修剪后的描述
func ValidateDescription(description string) (string, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return "", resp.NewError(resp.KindValidation, "任务描述不能为空")
	}
	if utf8.RuneCountInString(trimmed) > MaxDescriptionLen {
		return "", resp.NewError(resp.KindValidation, "任务描述过长（最多%d个字符）", MaxDescriptionLen)
	}
	return trimmed, nil
}

// CreateListE 创建清单，保留类型化错误
func (s *TaskService) CreateListE(ctx context.Context, ownerID, name string) (*entity.TaskList, error) {
	trimmed, err := ValidateListName(name)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateList(ctx, ownerID, trimmed)
}

// CreateList 创建清单。返回 (ok, message, list)，
// 表现层可直接渲染 message 而无需分辨错误类型。
func (s *TaskService) CreateList(ctx context.Context, ownerID, name string) (bool, string, *entity.TaskList) {
	list, err := s.CreateListE(ctx, ownerID, name)
	if err != nil {
		kind := resp.KindOf(err)
		if kind == resp.KindDatabase {
			logs.Errorf("创建清单出现意外错误, owner:%s, err:%v", ownerID, err)
		}
		var te *resp.Error
		if errors.As(err, &te) {
			return false, te.UserMessage(), nil
		}
		return false, "操作失败，请稍后重试", nil
	}
	return true, "清单创建成功", list
}

// GetUserLists 获取用户的全部清单
func (s *TaskService) GetUserLists(ctx context.Context, ownerID string) ([]*entity.TaskList, error) {
	return s.repo.GetUserLists(ctx, ownerID)
}

// GetList 获取指定清单
func (s *TaskService) GetList(ctx context.Context, listID int64) (*entity.TaskList, error) {
	return s.repo.GetList(ctx, listID)
}

// AddTask 校验描述后向清单添加任务
func (s *TaskService) AddTask(ctx context.Context, description string, listID int64) (*entity.Task, error) {
	trimmed, err := ValidateDescription(description)
	if err != nil {
		return nil, err
	}
	return s.repo.AddTask(ctx, trimmed, listID)
}

// ToggleTask 翻转任务完成状态
func (s *TaskService) ToggleTask(ctx context.Context, taskID int64) (*entity.Task, error) {
	return s.repo.ToggleTask(ctx, taskID)
}

// UpdateTaskDescription 校验后更新任务描述
func (s *TaskService) UpdateTaskDescription(ctx context.Context, taskID int64, newDescription string) (*entity.Task, error) {
	trimmed, err := ValidateDescription(newDescription)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateTaskDescription(ctx, taskID, trimmed)
}

// DeleteTask 删除单条任务
func (s *TaskService) DeleteTask(ctx context.Context, taskID int64) (bool, error) {
	return s.repo.DeleteTask(ctx, taskID)
}

// DeleteList 删除清单及其全部任务
func (s *TaskService) DeleteList(ctx context.Context, listID int64) (bool, error) {
	return s.repo.DeleteList(ctx, listID)
}

// DeleteCompletedTasks 清理清单内已完成任务。
// 逐条删除，部分成功时已删除的不回滚，整体报告失败。
func (s *TaskService) DeleteCompletedTasks(ctx context.Context, listID int64) (bool, error) {
	return s.repo.DeleteCompletedTasks(ctx, listID)
}

// CheckDatabase 创建并删除一条探活清单，报告存储是否可用
func (s *TaskService) CheckDatabase(ctx context.Context) (bool, string) {
	probe, err := s.repo.CreateList(ctx, "__test__", "__test__")
	if err != nil {
		logs.Errorf("数据库探活失败: %v", err)
		return false, "数据库异常：无法创建探活清单"
	}
	if _, err := s.repo.DeleteList(ctx, probe.ID); err != nil {
		logs.Errorf("数据库探活清理失败: %v", err)
		return false, "数据库异常：无法清理探活清单"
	}
	return true, "数据库运行正常"
}

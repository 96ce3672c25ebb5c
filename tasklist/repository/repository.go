package repository

import (
	"context"
	"strings"

	"github.com/hatcher/tasks/models"
	"github.com/hatcher/tasks/pkg/logs"
	"github.com/hatcher/tasks/pkg/resp"
	"github.com/hatcher/tasks/tasklist/entity"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Repository 任务清单的存储层，只做机械的增删改查，校验在 service 层。
// 每次调用都基于新 session，事务不跨调用持有。
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate 初始化表结构
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&entity.TaskList{}, &entity.Task{})
}

// session 为单次逻辑操作创建独立session
func (r *Repository) session(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Session(&gorm.Session{NewDB: true})
}

// CreateList 创建清单。先查重再插入，唯一索引兜底并发场景。
func (r *Repository) CreateList(ctx context.Context, ownerID, name string) (*entity.TaskList, error) {
	name = strings.TrimSpace(name)
	tx := r.session(ctx)
	exists, err := models.Exists(tx.Model(&entity.TaskList{}).
		Where("user_discord_id = ? and name = ?", ownerID, name))
	if err != nil {
		return nil, dbError(err, "查询清单是否存在失败, owner:%s, name:%s", ownerID, name)
	}
	if exists {
		return nil, resp.NewError(resp.KindDuplicateName, "名为『%s』的清单已存在", name)
	}

	list := &entity.TaskList{
		Name:          name,
		UserDiscordID: ownerID,
		Tasks:         []entity.Task{},
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		return models.Insert(tx, list)
	})
	if err != nil {
		if models.IsDuplicateErr(err) {
			// 预检查之后被并发创建抢先，唯一索引生效
			return nil, resp.WrapError(resp.KindDuplicateName, err, "名为『%s』的清单已存在", name)
		}
		return nil, dbError(err, "创建清单失败, owner:%s, name:%s", ownerID, name)
	}
	return list, nil
}

// GetUserLists 获取用户的全部清单，任务按创建顺序预加载
func (r *Repository) GetUserLists(ctx context.Context, ownerID string) ([]*entity.TaskList, error) {
	var lists []*entity.TaskList
	err := r.session(ctx).
		Where("user_discord_id = ?", ownerID).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Order("created_at asc, id asc").
		Find(&lists).Error
	if err != nil {
		return nil, dbError(err, "获取用户清单失败, owner:%s", ownerID)
	}
	return lists, nil
}

// GetList 按ID获取清单
func (r *Repository) GetList(ctx context.Context, listID int64) (*entity.TaskList, error) {
	var list entity.TaskList
	err := r.session(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		First(&list, "id = ?", listID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resp.NewError(resp.KindNotFound, "清单不存在, id:%d", listID)
		}
		return nil, dbError(err, "获取清单失败, id:%d", listID)
	}
	return &list, nil
}

// AddTask 向清单添加任务，清单不存在则报错
func (r *Repository) AddTask(ctx context.Context, description string, listID int64) (*entity.Task, error) {
	tx := r.session(ctx)
	exists, err := models.Exists(tx.Model(&entity.TaskList{}).Where("id = ?", listID))
	if err != nil {
		return nil, dbError(err, "查询清单是否存在失败, id:%d", listID)
	}
	if !exists {
		return nil, resp.NewError(resp.KindNotFound, "清单不存在, id:%d", listID)
	}

	task := &entity.Task{
		Description: strings.TrimSpace(description),
		Completed:   false,
		TaskListID:  listID,
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		return models.Insert(tx, task)
	})
	if err != nil {
		return nil, dbError(err, "添加任务失败, listId:%d", listID)
	}
	return task, nil
}

// ToggleTask 翻转任务完成状态。两次调用回到原值。
func (r *Repository) ToggleTask(ctx context.Context, taskID int64) (*entity.Task, error) {
	var task entity.Task
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}
		task.Completed = !task.Completed
		return models.Update(tx, &task)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resp.NewError(resp.KindNotFound, "任务不存在, id:%d", taskID)
		}
		return nil, dbError(err, "切换任务状态失败, id:%d", taskID)
	}
	return &task, nil
}

// UpdateTaskDescription 更新任务描述
func (r *Repository) UpdateTaskDescription(ctx context.Context, taskID int64, newDescription string) (*entity.Task, error) {
	var task entity.Task
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}
		task.Description = strings.TrimSpace(newDescription)
		return models.Update(tx, &task)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resp.NewError(resp.KindNotFound, "任务不存在, id:%d", taskID)
		}
		return nil, dbError(err, "更新任务描述失败, id:%d", taskID)
	}
	return &task, nil
}

// DeleteTask 删除单条任务，不存在视为错误而非静默成功
func (r *Repository) DeleteTask(ctx context.Context, taskID int64) (bool, error) {
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entity.Task{}, "id = ?", taskID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, resp.NewError(resp.KindNotFound, "任务不存在, id:%d", taskID)
		}
		return false, dbError(err, "删除任务失败, id:%d", taskID)
	}
	return true, nil
}

// DeleteList 删除清单并在同一事务内级联删除其全部任务。
// 显式删除子表，不依赖存储端外键的级联配置。
func (r *Repository) DeleteList(ctx context.Context, listID int64) (bool, error) {
	err := r.session(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.Task{}, "task_list_id = ?", listID).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.TaskList{}, "id = ?", listID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, resp.NewError(resp.KindNotFound, "清单不存在, id:%d", listID)
		}
		return false, dbError(err, "删除清单失败, id:%d", listID)
	}
	return true, nil
}

// DeleteCompletedTasks 逐条删除清单内已完成的任务。
// 不包事务：中途失败时已删除的任务保持删除，调用方收到整体失败。
// 清单不存在或没有已完成任务时返回 false, nil。
func (r *Repository) DeleteCompletedTasks(ctx context.Context, listID int64) (bool, error) {
	list, err := r.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, resp.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	done := list.CompletedTasks()
	if len(done) == 0 {
		return false, nil
	}
	for _, task := range done {
		if _, err := r.DeleteTask(ctx, task.ID); err != nil {
			logs.Errorf("删除已完成任务失败, listId:%d, taskId:%d, err:%v", listID, task.ID, err)
			return false, err
		}
	}
	return true, nil
}

// dbError 包装存储层错误，日志留详情，对外不泄露连接信息
func dbError(err error, format string, args ...interface{}) error {
	logs.Errorf(format+", err:%v", append(args, err)...)
	return resp.WrapError(resp.KindDatabase, err, format, args...)
}

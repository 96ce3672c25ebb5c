package repository

import (
	"context"
	"testing"

	"github.com/hatcher/tasks/pkg/ormx"
	"github.com/hatcher/tasks/pkg/resp"
	"github.com/hatcher/tasks/tasklist/entity"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*gorm.DB, *Repository) {
	t.Helper()
	// 内存库限制单连接，保证所有session落在同一个库上
	db, err := ormx.NewDBClient(ormx.DBConfig{
		DbType:             "sqlite",
		DSN:                ":memory:",
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
	})
	require.NoError(t, err)
	repo := NewRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return db, repo
}

func TestCreateList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "  工作  ")
	require.NoError(t, err)
	require.NotZero(t, list.ID)
	require.Equal(t, "工作", list.Name)
	require.Equal(t, "U1", list.UserDiscordID)
	require.NotNil(t, list.CreatedAt)
	require.Empty(t, list.Tasks)
}

func TestCreateListDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, repo := newTestRepo(t)

	_, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)

	_, err = repo.CreateList(ctx, "U1", "工作")
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrDuplicateName))

	// 仍然只有一行
	var cnt int64
	require.NoError(t, db.Model(&entity.TaskList{}).Count(&cnt).Error)
	require.EqualValues(t, 1, cnt)

	// 不同用户可以用相同名称
	_, err = repo.CreateList(ctx, "U2", "工作")
	require.NoError(t, err)
}

func TestGetUserLists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	first, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)
	second, err := repo.CreateList(ctx, "U1", "生活")
	require.NoError(t, err)
	_, err = repo.CreateList(ctx, "U2", "别人的")
	require.NoError(t, err)

	_, err = repo.AddTask(ctx, "写周报", first.ID)
	require.NoError(t, err)
	_, err = repo.AddTask(ctx, "开周会", first.ID)
	require.NoError(t, err)

	lists, err := repo.GetUserLists(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	require.Equal(t, first.ID, lists[0].ID)
	require.Equal(t, second.ID, lists[1].ID)
	// 任务按创建顺序预加载
	require.Len(t, lists[0].Tasks, 2)
	require.Equal(t, "写周报", lists[0].Tasks[0].Description)
	require.Equal(t, "开周会", lists[0].Tasks[1].Description)
	require.Empty(t, lists[1].Tasks)

	none, err := repo.GetUserLists(ctx, "U3")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestGetListNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	_, err := repo.GetList(ctx, 12345)
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

func TestAddTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)

	task, err := repo.AddTask(ctx, "写周报", list.ID)
	require.NoError(t, err)
	require.NotZero(t, task.ID)
	require.False(t, task.Completed)
	require.Equal(t, list.ID, task.TaskListID)

	_, err = repo.AddTask(ctx, "写周报", list.ID+100)
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

func TestToggleTaskPair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)
	task, err := repo.AddTask(ctx, "写周报", list.ID)
	require.NoError(t, err)

	toggled, err := repo.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	// 再翻转一次回到原值
	toggled, err = repo.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	require.False(t, toggled.Completed)

	_, err = repo.ToggleTask(ctx, task.ID+100)
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

func TestUpdateTaskDescription(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)
	task, err := repo.AddTask(ctx, "写周报", list.ID)
	require.NoError(t, err)

	updated, err := repo.UpdateTaskDescription(ctx, task.ID, "写月报")
	require.NoError(t, err)
	require.Equal(t, "写月报", updated.Description)

	_, err = repo.UpdateTaskDescription(ctx, task.ID+100, "不存在")
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

func TestDeleteTaskNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	ok, err := repo.DeleteTask(ctx, 999)
	require.False(t, ok)
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

func TestDeleteListCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)
	for _, desc := range []string{"a", "b", "c"} {
		_, err = repo.AddTask(ctx, desc, list.ID)
		require.NoError(t, err)
	}

	ok, err := repo.DeleteList(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.GetList(ctx, list.ID)
	require.True(t, errors.Is(err, resp.ErrNotFound))

	// 引用该清单的任务一行不剩
	var cnt int64
	require.NoError(t, db.Model(&entity.Task{}).Where("task_list_id = ?", list.ID).Count(&cnt).Error)
	require.Zero(t, cnt)

	ok, err = repo.DeleteList(ctx, list.ID)
	require.False(t, ok)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

func TestDeleteEmptyListCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "空清单")
	require.NoError(t, err)

	ok, err := repo.DeleteList(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteCompletedTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	// 清单不存在：不是错误，只是无事可做
	ok, err := repo.DeleteCompletedTasks(ctx, 999)
	require.NoError(t, err)
	require.False(t, ok)

	list, err := repo.CreateList(ctx, "U1", "工作")
	require.NoError(t, err)
	keep, err := repo.AddTask(ctx, "未完成", list.ID)
	require.NoError(t, err)
	done1, err := repo.AddTask(ctx, "已完成1", list.ID)
	require.NoError(t, err)
	done2, err := repo.AddTask(ctx, "已完成2", list.ID)
	require.NoError(t, err)

	// 没有已完成任务时同样返回 false
	ok, err = repo.DeleteCompletedTasks(ctx, list.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = repo.ToggleTask(ctx, done1.ID)
	require.NoError(t, err)
	_, err = repo.ToggleTask(ctx, done2.ID)
	require.NoError(t, err)

	ok, err = repo.DeleteCompletedTasks(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetList(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.Equal(t, keep.ID, got.Tasks[0].ID)
}

// 对应一次完整的使用过程：建清单、加任务、完成、清理、删清单
func TestListLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, repo := newTestRepo(t)

	list, err := repo.CreateList(ctx, "U1", "Errands")
	require.NoError(t, err)
	require.Empty(t, list.Tasks)

	task, err := repo.AddTask(ctx, "Buy milk", list.ID)
	require.NoError(t, err)
	require.False(t, task.Completed)

	toggled, err := repo.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, toggled.Completed)

	ok, err := repo.DeleteCompletedTasks(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetList(ctx, list.ID)
	require.NoError(t, err)
	require.Empty(t, got.Tasks)

	ok, err = repo.DeleteList(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.GetList(ctx, list.ID)
	require.True(t, errors.Is(err, resp.ErrNotFound))
}

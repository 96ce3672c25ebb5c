package service

import (
	"context"
	"strings"
	"testing"

	"github.com/hatcher/tasks/pkg/ormx"
	"github.com/hatcher/tasks/pkg/resp"
	"github.com/hatcher/tasks/tasklist/repository"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TaskService {
	t.Helper()
	db, err := ormx.NewDBClient(ormx.DBConfig{
		DbType:             "sqlite",
		DSN:                ":memory:",
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
	})
	require.NoError(t, err)
	repo := repository.NewRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return NewTaskService(repo)
}

func TestValidateListName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "normal", input: "工作", want: "工作"},
		{name: "trimmed", input: "  工作  ", want: "工作"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   \t ", wantErr: true},
		{name: "exactly 100", input: strings.Repeat("a", 100), want: strings.Repeat("a", 100)},
		{name: "101 rejected", input: strings.Repeat("a", 101), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateListName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, resp.ErrValidation))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "normal", input: "写周报"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: " \n ", wantErr: true},
		{name: "exactly 500", input: strings.Repeat("b", 500)},
		{name: "501 rejected", input: strings.Repeat("b", 501), wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateDescription(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, resp.ErrValidation))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateListOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	ok, msg, list := svc.CreateList(ctx, "U1", "工作")
	require.True(t, ok)
	require.NotEmpty(t, msg)
	require.NotNil(t, list)

	// 重名：失败结果而非错误，消息可直接展示
	ok, msg, list = svc.CreateList(ctx, "U1", "工作")
	require.False(t, ok)
	require.Contains(t, msg, "工作")
	require.Nil(t, list)

	// 校验失败同样走结果通道
	ok, msg, list = svc.CreateList(ctx, "U1", "   ")
	require.False(t, ok)
	require.NotEmpty(t, msg)
	require.Nil(t, list)
}

func TestAddTaskValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	list, err := svc.CreateListE(ctx, "U1", "工作")
	require.NoError(t, err)

	_, err = svc.AddTask(ctx, "  ", list.ID)
	require.True(t, errors.Is(err, resp.ErrValidation))

	task, err := svc.AddTask(ctx, "  写周报  ", list.ID)
	require.NoError(t, err)
	require.Equal(t, "写周报", task.Description)
}

func TestUpdateTaskDescriptionValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	list, err := svc.CreateListE(ctx, "U1", "工作")
	require.NoError(t, err)
	task, err := svc.AddTask(ctx, "写周报", list.ID)
	require.NoError(t, err)

	_, err = svc.UpdateTaskDescription(ctx, task.ID, strings.Repeat("x", 501))
	require.True(t, errors.Is(err, resp.ErrValidation))

	updated, err := svc.UpdateTaskDescription(ctx, task.ID, "写月报")
	require.NoError(t, err)
	require.Equal(t, "写月报", updated.Description)
}

func TestDeleteCompletedTasksPartition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	list, err := svc.CreateListE(ctx, "U1", "工作")
	require.NoError(t, err)
	_, err = svc.AddTask(ctx, "未完成", list.ID)
	require.NoError(t, err)
	done, err := svc.AddTask(ctx, "已完成", list.ID)
	require.NoError(t, err)
	_, err = svc.ToggleTask(ctx, done.ID)
	require.NoError(t, err)

	ok, err := svc.DeleteCompletedTasks(ctx, list.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := svc.GetList(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.Equal(t, "未完成", got.Tasks[0].Description)
}

func TestCheckDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	ok, msg := svc.CheckDatabase(ctx)
	require.True(t, ok)
	require.NotEmpty(t, msg)

	// 探活清单不留痕
	lists, err := svc.GetUserLists(ctx, "__test__")
	require.NoError(t, err)
	require.Empty(t, lists)
}

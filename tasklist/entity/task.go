package entity

import (
	"github.com/hatcher/tasks/pkg/ormx"
)

// Task 单条任务，必须归属于一个清单，随清单级联删除
type Task struct {
	ormx.BaseModel
	Description string `json:"description" gorm:"column:description;type:varchar(500);not null"`
	Completed   bool   `json:"completed" gorm:"column:completed;type:tinyint(1);not null;default:0"`
	TaskListID  int64  `json:"taskListId" gorm:"column:task_list_id;type:bigint;not null;index"`
}

func (t *Task) TableName() string {
	return "tasks"
}

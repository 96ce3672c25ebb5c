package entity

import (
	"github.com/hatcher/tasks/pkg/ormx"
)

// TaskList 任务清单，归属于唯一的外部用户。
// (user_discord_id, name) 的唯一索引是并发重复创建的最终防线，
// 业务层的预检查只是给用户更友好的提示。
type TaskList struct {
	ormx.BaseModel
	Name          string `json:"name" gorm:"column:name;type:varchar(100);not null;uniqueIndex:uk_user_name"`
	UserDiscordID string `json:"userDiscordId" gorm:"column:user_discord_id;type:varchar(255);not null;uniqueIndex:uk_user_name"`
	Tasks         []Task `json:"tasks" gorm:"foreignKey:TaskListID;constraint:OnDelete:CASCADE"`
}

func (l *TaskList) TableName() string {
	return "task_lists"
}

// CompletedTasks 已完成任务
func (l *TaskList) CompletedTasks() []Task {
	var done []Task
	for _, t := range l.Tasks {
		if t.Completed {
			done = append(done, t)
		}
	}
	return done
}

package db

import (
	"metagen/internal/entity/common"
	"time"
)

const (
	TaskStatusProcessing = "PROCESSING"
	TaskStatusCompleted  = "COMPLETED"
	TaskStatusFailed     = "FAILED"
)

// Task 是一次批量元数据生成任务。progress/result/status 在运行期间只由编排器写入。
type Task struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(64)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string             `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	GeneratorID string             `gorm:"column:generator_id;type:varchar(32)" json:"generator_id"`
	Files       common.FileRefList `gorm:"column:files;type:json" json:"files"`

	Progress   int                `gorm:"column:progress;not null;default:0" json:"progress"`
	Result     common.OutcomeList `gorm:"column:result;type:json" json:"result"`
	Status     string             `gorm:"column:status;type:varchar(32);index;not null" json:"status"`
	AIProvider string             `gorm:"column:ai_provider;type:varchar(32)" json:"ai_provider"`

	CreditsCharged int64  `gorm:"column:credits_charged;not null;default:0" json:"credits_charged"`
	ExportPath     string `gorm:"column:export_path;type:varchar(512)" json:"export_path"`
	ErrorMessage   string `gorm:"column:error_message;type:text" json:"error_message"`
}

// TableName 指定表名
func (Task) TableName() string {
	return "tasks"
}

// IsTerminal 判断任务是否已结束。
func (t *Task) IsTerminal() bool {
	if t == nil {
		return false
	}
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

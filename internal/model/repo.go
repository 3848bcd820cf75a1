package model

import (
	"context"
	"metagen/internal/entity"
	"metagen/internal/entity/dto"
	"metagen/internal/model/sql"
)

var (
	// ErrCreditsNotFound 用户没有积分账户
	ErrCreditsNotFound = sql.ErrCreditsNotFound
	// ErrTaskNotFound 任务不存在
	ErrTaskNotFound = sql.ErrTaskNotFound
)

// Repository 定义数据库操作接口
type Repository interface {
	// 任务
	CreateTask(ctx context.Context, task *entity.DbTask) error
	EnsureTask(ctx context.Context, task *entity.DbTask) (*entity.DbTask, error)
	GetTask(ctx context.Context, id string) (*entity.DbTask, error)
	UpdateTaskProgress(ctx context.Context, id string, updates entity.TaskProgressUpdates) error
	UpdateTaskStatus(ctx context.Context, id string, status string) error
	UpdateTask(ctx context.Context, id string, updates entity.TaskUpdates) error

	// 积分
	GetCreditBalance(ctx context.Context, userID string) (int64, error)
	SetCreditBalance(ctx context.Context, userID string, balance int64) error
	ApplyCreditDelta(ctx context.Context, userID string, amount int64, kind string, taskID string) (int64, error)
	ListCreditTransactions(ctx context.Context, params *dto.CreditTransactionQuery) ([]entity.DbCreditTransaction, *entity.Meta, error)
}

package sql

import (
	"context"
	"errors"
	"fmt"
	"metagen/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTaskNotFound is returned when no task row matches the id.
var ErrTaskNotFound = errors.New("task not found")

// CreateTask inserts a new task row.
func (r *GormRepository) CreateTask(ctx context.Context, task *entity.DbTask) error {
	if task == nil {
		return fmt.Errorf("task is nil")
	}
	if task.Status == "" {
		task.Status = entity.TaskStatusProcessing
	}
	if task.Result == nil {
		task.Result = entity.OutcomeList{}
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// EnsureTask inserts the task unless a row with the same id exists, and
// returns the stored row.
func (r *GormRepository) EnsureTask(ctx context.Context, task *entity.DbTask) (*entity.DbTask, error) {
	if task == nil || task.ID == "" {
		return nil, fmt.Errorf("task id is required")
	}
	if task.Status == "" {
		task.Status = entity.TaskStatusProcessing
	}
	if task.Result == nil {
		task.Result = entity.OutcomeList{}
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(task).Error; err != nil {
		return nil, err
	}
	return r.GetTask(ctx, task.ID)
}

// GetTask loads a task by id.
func (r *GormRepository) GetTask(ctx context.Context, id string) (*entity.DbTask, error) {
	var task entity.DbTask
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskProgress writes a full progress snapshot. Writing the same
// snapshot twice leaves the row unchanged.
func (r *GormRepository) UpdateTaskProgress(ctx context.Context, id string, updates entity.TaskProgressUpdates) error {
	res := r.db.WithContext(ctx).Model(&entity.DbTask{}).Where("id = ?", id).Updates(updates.ToMap())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// UpdateTaskStatus sets only the status column.
func (r *GormRepository) UpdateTaskStatus(ctx context.Context, id string, status string) error {
	res := r.db.WithContext(ctx).Model(&entity.DbTask{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// UpdateTask applies the non-nil fields of updates.
func (r *GormRepository) UpdateTask(ctx context.Context, id string, updates entity.TaskUpdates) error {
	if updates.IsEmpty() {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&entity.DbTask{}).Where("id = ?", id).Updates(updates.ToMap())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.ensureExists(ctx, id)
	}
	return nil
}

// ensureExists distinguishes "no such row" from "row already had these values"
// on drivers that report only changed rows.
func (r *GormRepository) ensureExists(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.DbTask{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTaskNotFound
	}
	return nil
}

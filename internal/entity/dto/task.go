package dto

import (
	"metagen/internal/entity/common"
	"time"
)

// TaskItem is the response representation of a task.
type TaskItem struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	GeneratorID    string             `json:"generator_id"`
	Status         string             `json:"status"`
	AIProvider     string             `json:"ai_provider"`
	Total          int                `json:"total"`
	Progress       int                `json:"progress"`
	Failed         int                `json:"failed"`
	Result         common.OutcomeList `json:"result"`
	CreditsCharged int64              `json:"credits_charged"`
	ExportPath     string             `json:"export_path,omitempty"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// TaskDetailResponse is the response for a single task.
type TaskDetailResponse struct {
	Task TaskItem `json:"task"`
}

// ProcessTaskResponse acknowledges an accepted task.
type ProcessTaskResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

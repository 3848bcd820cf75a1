package entity

// TaskProgressUpdates 是一次检查点写入的完整快照。
type TaskProgressUpdates struct {
	Progress   int
	Result     OutcomeList
	Status     string
	AIProvider string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u TaskProgressUpdates) ToMap() map[string]interface{} {
	result := u.Result
	if result == nil {
		result = OutcomeList{}
	}
	updates := map[string]interface{}{
		"progress": u.Progress,
		"result":   result,
		"status":   u.Status,
	}
	if u.AIProvider != "" {
		updates["ai_provider"] = u.AIProvider
	}
	return updates
}

// TaskUpdates 任务的附加字段更新
type TaskUpdates struct {
	Status         *string
	CreditsCharged *int64
	ExportPath     *string
	ErrorMessage   *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u TaskUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.CreditsCharged != nil {
		updates["credits_charged"] = *u.CreditsCharged
	}
	if u.ExportPath != nil {
		updates["export_path"] = *u.ExportPath
	}
	if u.ErrorMessage != nil {
		updates["error_message"] = *u.ErrorMessage
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u TaskUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

package converter

import (
	"metagen/internal/entity/db"
	"metagen/internal/entity/dto"
)

// TaskToItem 将 db.Task 转换为 dto.TaskItem。
func TaskToItem(t *db.Task) dto.TaskItem {
	if t == nil {
		return dto.TaskItem{}
	}

	failed := 0
	for _, outcome := range t.Result {
		if !outcome.Succeeded() {
			failed++
		}
	}

	return dto.TaskItem{
		ID:             t.ID,
		UserID:         t.UserID,
		GeneratorID:    t.GeneratorID,
		Status:         t.Status,
		AIProvider:     t.AIProvider,
		Total:          len(t.Files),
		Progress:       t.Progress,
		Failed:         failed,
		Result:         t.Result,
		CreditsCharged: t.CreditsCharged,
		ExportPath:     t.ExportPath,
		ErrorMessage:   t.ErrorMessage,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

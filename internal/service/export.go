package service

import (
	"bytes"
	"context"
	"metagen/internal/entity"
	"metagen/internal/generator"
	"metagen/internal/storage"

	"github.com/sirupsen/logrus"
)

const exportCategory = "exports"

// export 把成功的结果渲染为 CSV 并保存，返回对象键。失败只记录日志。
func (p *TaskProcessor) export(ctx context.Context, taskID string, profile *generator.Profile, results entity.OutcomeList, logger *logrus.Entry) string {
	if p.storage == nil {
		return ""
	}

	var buf bytes.Buffer
	rows, err := generator.WriteCSV(&buf, profile, results)
	if err != nil {
		logger.WithError(err).Error("task_export_render_failed")
		return ""
	}
	if rows == 0 {
		return ""
	}

	key, err := p.storage.Save(ctx, buf.Bytes(), storage.SaveOptions{
		Category:    exportCategory,
		BaseName:    taskID,
		Extension:   "csv",
		ContentType: "text/csv; charset=utf-8",
	})
	if err != nil {
		logger.WithError(err).Error("task_export_save_failed")
		return ""
	}

	if p.repo != nil {
		if err := p.repo.UpdateTask(ctx, taskID, entity.TaskUpdates{ExportPath: &key}); err != nil {
			logger.WithError(err).Warn("task_export_record_failed")
		}
	}
	logger.WithFields(logrus.Fields{"export_path": key, "rows": rows}).Info("task_export_saved")
	return key
}

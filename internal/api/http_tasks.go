package api

import (
	"context"
	"errors"
	"metagen/internal/entity"
	"metagen/internal/entity/converter"
	"metagen/internal/entity/dto"
	"metagen/internal/model"
	"metagen/internal/service"
	"metagen/internal/storage"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProcessTask 接收任务并在后台处理，立即返回确认
func (h *HTTPHandler) ProcessTask(c *gin.Context) {
	var req entity.ProcessTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c, err)
		return
	}
	req.TaskID = strings.TrimSpace(req.TaskID)
	if req.TaskID == "" {
		MissingField(c, "taskId")
		return
	}
	if dup := duplicateFileID(req.Files); dup != "" {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeDuplicateFile, "file ids must be unique", gin.H{"id": dup})
		return
	}

	logger := logrus.WithFields(logrus.Fields{
		"task_id":      req.TaskID,
		"user_id":      req.UserID,
		"generator_id": req.GeneratorID.String(),
		"api_type":     req.APIType,
		"files":        len(req.Files),
	})
	if caller := CurrentCaller(c); caller != nil {
		logger = logger.WithField("caller", caller.Subject)
	}

	if h.runner == nil {
		ServiceUnavailable(c, "task processor is not configured")
		return
	}

	if h.repo != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
		defer cancel()

		task, err := h.repo.EnsureTask(ctx, &entity.DbTask{
			ID:          req.TaskID,
			UserID:      req.UserID,
			GeneratorID: req.GeneratorID.String(),
			Files:       entity.FileRefList(req.Files),
			Status:      entity.TaskStatusProcessing,
		})
		if err != nil {
			logger.WithError(err).Error("failed to ensure task")
			InternalError(c, "failed to store task")
			return
		}
		if task.IsTerminal() {
			Conflict(c, ErrCodeTaskFinished, "task has already finished")
			return
		}
		if task.UserID != "" && req.UserID != "" && task.UserID != req.UserID {
			Conflict(c, ErrCodeTaskOwnerChange, "task belongs to another user")
			return
		}
	}

	if _, err := h.runner.ProcessTaskAsync(req); err != nil {
		if errors.Is(err, service.ErrTaskRunning) {
			Conflict(c, ErrCodeTaskRunning, "task is already being processed")
			return
		}
		logger.WithError(err).Error("failed to start task")
		InternalError(c, "failed to start task")
		return
	}
	logger.Info("task_accepted")

	c.JSON(http.StatusOK, dto.ProcessTaskResponse{
		Success: true,
		Msg:     "Task processing started",
	})
}

// GetTask 返回任务的当前快照
func (h *HTTPHandler) GetTask(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.TaskDetailResponse{Task: converter.TaskToItem(task)})
}

// DownloadExport 下载任务的 CSV 导出文件，仅本地存储支持直接下载
func (h *HTTPHandler) DownloadExport(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}
	if task.ExportPath == "" {
		NotFound(c, ErrCodeExportNotFound, "task has no export")
		return
	}

	local, isLocal := h.storage.(*storage.LocalStorage)
	if !isLocal {
		c.JSON(http.StatusOK, gin.H{"export_path": task.ExportPath})
		return
	}
	absPath, err := local.Resolve(task.ExportPath)
	if err != nil {
		logrus.WithError(err).WithField("task_id", task.ID).Error("invalid export path")
		NotFound(c, ErrCodeExportNotFound, "task has no export")
		return
	}
	c.FileAttachment(absPath, path.Base(task.ExportPath))
}

func (h *HTTPHandler) loadTask(c *gin.Context) (*entity.DbTask, bool) {
	if h.repo == nil {
		ServiceUnavailable(c, "database is not configured")
		return nil, false
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		MissingField(c, "id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
	defer cancel()

	task, err := h.repo.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			NotFound(c, ErrCodeTaskNotFound, "task not found")
			return nil, false
		}
		logrus.WithError(err).WithField("task_id", id).Error("failed to load task")
		InternalError(c, "failed to load task")
		return nil, false
	}
	return task, true
}

func duplicateFileID(files []entity.FileRef) string {
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		if _, ok := seen[file.ID]; ok {
			return file.ID
		}
		seen[file.ID] = struct{}{}
	}
	return ""
}

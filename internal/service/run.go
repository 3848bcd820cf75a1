package service

import (
	"context"
	"fmt"
	"metagen/internal/entity"
	"metagen/internal/generator"
	"metagen/internal/llm"
	"sync"

	"github.com/sirupsen/logrus"
)

// runState 收集一次任务运行中的结果，按完成顺序追加
type runState struct {
	mu      sync.Mutex
	outcome entity.OutcomeList
	success int
	failed  int
}

func newRunState() *runState {
	return &runState{outcome: entity.OutcomeList{}}
}

func (s *runState) record(o entity.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = append(s.outcome, o)
	if o.Succeeded() {
		s.success++
	} else {
		s.failed++
	}
}

func (s *runState) counts() (success, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.success, s.failed
}

func (s *runState) results() entity.OutcomeList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome.Clone()
}

// snapshot 返回用于检查点写入的完整快照
func (s *runState) snapshot(status, provider string) entity.TaskProgressUpdates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.TaskProgressUpdates{
		Progress:   s.success,
		Result:     s.outcome.Clone(),
		Status:     status,
		AIProvider: provider,
	}
}

// taskRun 持有单个任务运行期间不变的参数
type taskRun struct {
	processor *TaskProcessor
	profile   *generator.Profile
	client    llm.MetadataService
	prompt    string
	useVision bool
	state     *runState
	logger    *logrus.Entry
}

// process 对单个文件最多尝试 MaxAttempts 次，失败时返回 status=false 的记录
func (r *taskRun) process(ctx context.Context, file entity.FileRef) entity.Outcome {
	logger := r.logger.WithField("file_id", file.ID)
	attempts := r.processor.cfg.MaxAttempts

	for attempt := 1; attempt <= attempts; attempt++ {
		outcome, err := r.attempt(ctx, file)
		if err == nil {
			logger.WithField("attempt", attempt).Info("task_file_succeeded")
			return outcome
		}
		logger.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": attempts,
		}).WithError(err).Warn("task_file_attempt_failed")
		if ctx.Err() != nil {
			break
		}
	}

	logger.Error("task_file_failed")
	return failedOutcome(file.ID)
}

func (r *taskRun) attempt(ctx context.Context, file entity.FileRef) (outcome entity.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during metadata generation: %v", rec)
		}
	}()
	if err := ctx.Err(); err != nil {
		return entity.Outcome{}, err
	}

	callCtx := ctx
	if timeout := r.processor.cfg.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	request := llm.MetadataRequest{
		SystemPrompt: r.prompt,
		Filename:     file.Title,
	}
	if r.useVision && file.URL != "" {
		request.ImageURL = file.URL
	}

	resp, err := r.client.GenerateMetadata(callCtx, request)
	if err != nil {
		return entity.Outcome{}, err
	}
	if resp == nil {
		return entity.Outcome{}, llm.ErrEmptyResponse
	}

	metadata := entity.JSONMap(generator.Normalize(resp.Data, file, r.profile))
	metadata["status"] = true
	return entity.Outcome{
		FileID:        file.ID,
		Metadata:      metadata,
		UsageMetadata: entity.JSONMap(resp.Usage),
	}, nil
}

// abandon 在任务被取消时把剩余文件记为失败
func (r *taskRun) abandon(files []entity.FileRef, cause error) {
	r.logger.WithError(cause).WithField("remaining", len(files)).Warn("task_run_interrupted")
	for _, file := range files {
		r.state.record(failedOutcome(file.ID))
	}
}

func (r *taskRun) checkpoint(ctx context.Context, cp *checkpointer) {
	if err := cp.Save(ctx, r.state, entity.TaskStatusProcessing, false); err != nil {
		r.logger.WithError(err).Warn("task_checkpoint_failed")
	}
}

func failedOutcome(fileID string) entity.Outcome {
	return entity.Outcome{
		FileID:   fileID,
		Metadata: entity.JSONMap{"status": false},
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"metagen/internal/config"
	"metagen/internal/entity"
	"metagen/internal/generator"
	"metagen/internal/llm"
	"metagen/internal/model"
	"metagen/internal/storage"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrMissingCredential 任务既没有自带凭证，也没有可用的平台凭证
var ErrMissingCredential = errors.New("no api key available for provider")

// ErrTaskRunning 同一任务已有一次处理在进行中
var ErrTaskRunning = errors.New("task is already running")

// ClientFactory 为一个任务创建 AI 服务客户端
type ClientFactory func(kind entity.ProviderKind, apiKey string) (llm.MetadataService, error)

// ProcessorConfig 任务编排参数
type ProcessorConfig struct {
	MaxAttempts        int
	ThrottleInterval   time.Duration
	CheckpointInterval time.Duration
	RequestTimeout     time.Duration

	BillingEnabled  bool
	RatePlatformKey int64
	RateOwnKey      int64

	PlatformKeys map[entity.ProviderKind]string
}

// NewProcessorConfig 从全局配置构建编排参数
func NewProcessorConfig(cfg config.Config) ProcessorConfig {
	return ProcessorConfig{
		MaxAttempts:        cfg.MaxAttempts,
		ThrottleInterval:   cfg.GeminiFileInterval,
		CheckpointInterval: cfg.CheckpointInterval,
		RequestTimeout:     cfg.LLMRequestTimeout,
		BillingEnabled:     cfg.BillingEnabled,
		RatePlatformKey:    cfg.CreditRatePlatformKey,
		RateOwnKey:         cfg.CreditRateOwnKey,
		PlatformKeys: map[entity.ProviderKind]string{
			entity.ProviderOpenAI:     cfg.OpenAIAPIKey,
			entity.ProviderGemini:     cfg.GeminiAPIKey,
			entity.ProviderVolcengine: cfg.VolcengineAPIKey,
		},
	}
}

// NewClientFactory 返回基于 llm.NewService 的默认客户端工厂
func NewClientFactory(cfg config.Config) ClientFactory {
	return func(kind entity.ProviderKind, apiKey string) (llm.MetadataService, error) {
		opts := llm.Options{Timeout: cfg.LLMRequestTimeout}
		switch kind {
		case entity.ProviderOpenAI:
			opts.Model = cfg.OpenAIModel
			opts.BaseURL = cfg.OpenAIBaseURL
		case entity.ProviderGemini:
			opts.Model = cfg.GeminiModel
		case entity.ProviderVolcengine:
			opts.Model = cfg.VolcengineModel
		}
		return llm.NewService(kind, apiKey, opts)
	}
}

// TaskSummary 任务结束时的汇总
type TaskSummary struct {
	TaskID     string
	Status     string
	Total      int
	Success    int
	Failed     int
	Charged    int64
	ExportPath string
	Err        error
}

// TaskProcessor 编排一个任务中所有文件的元数据生成
type TaskProcessor struct {
	repo      model.Repository
	registry  *generator.Registry
	storage   storage.Storage
	newClient ClientFactory
	cfg       ProcessorConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	inflight sync.WaitGroup
	mu       sync.Mutex
	running  map[string]struct{}
}

// Option 调整 TaskProcessor 的可替换依赖
type Option func(*TaskProcessor)

// WithClientFactory 替换 AI 客户端工厂
func WithClientFactory(factory ClientFactory) Option {
	return func(p *TaskProcessor) {
		p.newClient = factory
	}
}

// WithClock 替换时钟与等待函数
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *TaskProcessor) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// NewTaskProcessor 创建任务编排器。store 为 nil 时不导出 CSV。
func NewTaskProcessor(repo model.Repository, registry *generator.Registry, store storage.Storage, cfg ProcessorConfig, opts ...Option) *TaskProcessor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if registry == nil {
		registry = generator.Default()
	}
	p := &TaskProcessor{
		repo:     repo,
		registry: registry,
		storage:  store,
		cfg:      cfg,
		now:      time.Now,
		sleep:    sleepContext,
		running:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.newClient == nil {
		p.newClient = func(kind entity.ProviderKind, apiKey string) (llm.MetadataService, error) {
			return llm.NewService(kind, apiKey, llm.Options{Timeout: cfg.RequestTimeout})
		}
	}
	return p
}

// ProcessTaskAsync 在后台运行任务，返回的通道在结束时收到一次汇总，可忽略。
// 同一任务仍在处理时返回 ErrTaskRunning。
func (p *TaskProcessor) ProcessTaskAsync(req entity.ProcessTaskRequest) (<-chan TaskSummary, error) {
	if !p.claim(req.TaskID) {
		return nil, fmt.Errorf("%s: %w", req.TaskID, ErrTaskRunning)
	}
	done := make(chan TaskSummary, 1)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		defer close(done)
		summary := p.processTask(context.Background(), req)
		p.release(req.TaskID)
		done <- summary
	}()
	return done, nil
}

// Wait 等待所有后台任务结束，ctx 到期时返回其错误
func (p *TaskProcessor) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessTask 处理任务中的全部文件、写入最终状态并扣除积分。错误不会向外传播，
// 同一任务已在处理时直接返回带 ErrTaskRunning 的汇总且不写库。
func (p *TaskProcessor) ProcessTask(ctx context.Context, req entity.ProcessTaskRequest) TaskSummary {
	if !p.claim(req.TaskID) {
		return TaskSummary{TaskID: req.TaskID, Err: fmt.Errorf("%s: %w", req.TaskID, ErrTaskRunning)}
	}
	defer p.release(req.TaskID)
	return p.processTask(ctx, req)
}

// Running 报告任务是否正在处理
func (p *TaskProcessor) Running(taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.running[taskID]
	return ok
}

func (p *TaskProcessor) claim(taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.running[taskID]; ok {
		return false
	}
	p.running[taskID] = struct{}{}
	return true
}

func (p *TaskProcessor) release(taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.running, taskID)
}

func (p *TaskProcessor) processTask(ctx context.Context, req entity.ProcessTaskRequest) TaskSummary {
	logger := logrus.WithFields(logrus.Fields{
		"task_id":      req.TaskID,
		"generator_id": req.GeneratorID.String(),
		"api_type":     req.APIType,
	})

	files := uniqueFiles(req.Files)
	if len(files) != len(req.Files) {
		logger.WithField("duplicates", len(req.Files)-len(files)).Warn("task_duplicate_files_dropped")
	}
	summary := TaskSummary{TaskID: req.TaskID, Total: len(files)}

	profile, kind, client, err := p.prepare(req)
	if err != nil {
		logger.WithError(err).Error("task_setup_failed")
		p.failFast(ctx, req.TaskID, err)
		summary.Status = entity.TaskStatusFailed
		summary.Err = err
		return summary
	}
	logger = logger.WithFields(logrus.Fields{
		"provider":  string(kind),
		"generator": profile.Slug,
		"files":     len(files),
	})
	logger.Info("task_processing_start")

	run := &taskRun{
		processor: p,
		profile:   profile,
		client:    client,
		prompt:    generator.BuildPrompt(profile, req.NumKeywords, req.TitleChars),
		useVision: req.UseVision,
		state:     newRunState(),
		logger:    logger,
	}
	cp := newCheckpointer(p.repo, req.TaskID, string(kind), p.cfg.CheckpointInterval, p.now)

	if kind.Throttled() {
		p.runSequential(ctx, run, cp, files)
	} else {
		p.runConcurrent(ctx, run, cp, files)
	}

	// 最终写入不受调用方取消影响
	finalCtx := context.WithoutCancel(ctx)
	success, failed := run.state.counts()
	status := finalStatus(success, failed, len(files))
	if err := cp.Save(finalCtx, run.state, status, true); err != nil {
		logger.WithError(err).Error("task_final_checkpoint_failed")
	}

	summary.Status = status
	summary.Success = success
	summary.Failed = failed
	summary.Charged = p.charge(finalCtx, req, success, logger)
	if status == entity.TaskStatusCompleted {
		summary.ExportPath = p.export(finalCtx, req.TaskID, profile, run.state.results(), logger)
	}

	logger.WithFields(logrus.Fields{
		"status":  status,
		"success": success,
		"failed":  failed,
		"charged": summary.Charged,
	}).Info("task_processing_finished")
	return summary
}

// prepare 解析生成器、服务商与凭证
func (p *TaskProcessor) prepare(req entity.ProcessTaskRequest) (*generator.Profile, entity.ProviderKind, llm.MetadataService, error) {
	kind, kindErr := entity.ParseProviderKind(req.APIType)

	profile, err := p.registry.Lookup(req.GeneratorID.String())
	if err != nil {
		return nil, kind, nil, err
	}
	if profile.ComingSoon {
		return nil, kind, nil, fmt.Errorf("generator %s is not available yet", profile.Slug)
	}
	if kindErr != nil {
		return nil, "", nil, kindErr
	}

	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" && req.OurAPI {
		apiKey = strings.TrimSpace(p.cfg.PlatformKeys[kind])
	}
	if apiKey == "" {
		return nil, kind, nil, fmt.Errorf("%s: %w", kind, ErrMissingCredential)
	}

	client, err := p.newClient(kind, apiKey)
	if err != nil {
		return nil, kind, nil, fmt.Errorf("create %s client: %w", kind, err)
	}
	return profile, kind, client, nil
}

func (p *TaskProcessor) failFast(ctx context.Context, taskID string, cause error) {
	if p.repo == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	logger := logrus.WithField("task_id", taskID)

	if err := p.repo.UpdateTaskStatus(ctx, taskID, entity.TaskStatusFailed); err != nil {
		logger.WithError(err).Error("task_fail_fast_update_failed")
		return
	}
	message := cause.Error()
	if err := p.repo.UpdateTask(ctx, taskID, entity.TaskUpdates{ErrorMessage: &message}); err != nil {
		logger.WithError(err).Error("task_fail_fast_update_failed")
	}
}

func (p *TaskProcessor) runSequential(ctx context.Context, run *taskRun, cp *checkpointer, files []entity.FileRef) {
	for i, file := range files {
		if i > 0 {
			if err := p.sleep(ctx, p.cfg.ThrottleInterval); err != nil {
				run.abandon(files[i:], err)
				return
			}
		}
		run.state.record(run.process(ctx, file))
		run.checkpoint(ctx, cp)
	}
}

func (p *TaskProcessor) runConcurrent(ctx context.Context, run *taskRun, cp *checkpointer, files []entity.FileRef) {
	var g errgroup.Group
	for _, file := range files {
		g.Go(func() error {
			run.state.record(run.process(ctx, file))
			run.checkpoint(ctx, cp)
			return nil
		})
	}
	_ = g.Wait()
}

func finalStatus(success, failed, total int) string {
	if success > 0 && success+failed == total {
		return entity.TaskStatusCompleted
	}
	return entity.TaskStatusFailed
}

func uniqueFiles(files []entity.FileRef) []entity.FileRef {
	seen := make(map[string]struct{}, len(files))
	out := make([]entity.FileRef, 0, len(files))
	for _, file := range files {
		if _, ok := seen[file.ID]; ok {
			continue
		}
		seen[file.ID] = struct{}{}
		out = append(out, file)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

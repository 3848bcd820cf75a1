package service

import (
	"context"
	"metagen/internal/model"
	"sync"
	"time"
)

// checkpointer 把运行状态写入任务行。非强制写入按 interval 限流；
// 写入串行执行，快照在持锁时生成，旧快照不会覆盖新快照。
type checkpointer struct {
	repo     model.Repository
	taskID   string
	provider string
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	last    time.Time
	written bool
}

func newCheckpointer(repo model.Repository, taskID, provider string, interval time.Duration, now func() time.Time) *checkpointer {
	if now == nil {
		now = time.Now
	}
	return &checkpointer{
		repo:     repo,
		taskID:   taskID,
		provider: provider,
		interval: interval,
		now:      now,
	}
}

// Save 写入一次完整快照；force 为 false 时可能因限流跳过
func (c *checkpointer) Save(ctx context.Context, state *runState, status string, force bool) error {
	if c.repo == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !force && c.written && now.Sub(c.last) < c.interval {
		return nil
	}

	if err := c.repo.UpdateTaskProgress(ctx, c.taskID, state.snapshot(status, c.provider)); err != nil {
		return err
	}
	c.last = now
	c.written = true
	return nil
}

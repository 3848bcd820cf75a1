package service

import (
	"context"
	"errors"
	"metagen/internal/entity"
	"metagen/internal/entity/dto"
	"metagen/internal/llm"
	"metagen/internal/model"
	"sync"
	"sync/atomic"
	"time"
)

// memoryRepo is an in-memory model.Repository that records every write.
type memoryRepo struct {
	mu          sync.Mutex
	tasks       map[string]*entity.DbTask
	checkpoints []entity.TaskProgressUpdates
	balances    map[string]int64
	ledger      []entity.DbCreditTransaction
	ledgerErr   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		tasks:    map[string]*entity.DbTask{},
		balances: map[string]int64{},
	}
}

func (r *memoryRepo) CreateTask(_ context.Context, task *entity.DbTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	if copied.Status == "" {
		copied.Status = entity.TaskStatusProcessing
	}
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memoryRepo) EnsureTask(ctx context.Context, task *entity.DbTask) (*entity.DbTask, error) {
	r.mu.Lock()
	existing, ok := r.tasks[task.ID]
	r.mu.Unlock()
	if ok {
		return existing, nil
	}
	if err := r.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return r.GetTask(ctx, task.ID)
}

func (r *memoryRepo) GetTask(_ context.Context, id string) (*entity.DbTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, model.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memoryRepo) UpdateTaskProgress(_ context.Context, id string, updates entity.TaskProgressUpdates) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return model.ErrTaskNotFound
	}
	r.checkpoints = append(r.checkpoints, updates)
	task.Progress = updates.Progress
	task.Result = updates.Result.Clone()
	if task.Result == nil {
		task.Result = entity.OutcomeList{}
	}
	task.Status = updates.Status
	if updates.AIProvider != "" {
		task.AIProvider = updates.AIProvider
	}
	return nil
}

func (r *memoryRepo) UpdateTaskStatus(_ context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return model.ErrTaskNotFound
	}
	task.Status = status
	return nil
}

func (r *memoryRepo) UpdateTask(_ context.Context, id string, updates entity.TaskUpdates) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return model.ErrTaskNotFound
	}
	if updates.Status != nil {
		task.Status = *updates.Status
	}
	if updates.CreditsCharged != nil {
		task.CreditsCharged = *updates.CreditsCharged
	}
	if updates.ExportPath != nil {
		task.ExportPath = *updates.ExportPath
	}
	if updates.ErrorMessage != nil {
		task.ErrorMessage = *updates.ErrorMessage
	}
	return nil
}

func (r *memoryRepo) GetCreditBalance(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance, ok := r.balances[userID]
	if !ok {
		return 0, model.ErrCreditsNotFound
	}
	return balance, nil
}

func (r *memoryRepo) SetCreditBalance(_ context.Context, userID string, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] = balance
	return nil
}

func (r *memoryRepo) ApplyCreditDelta(_ context.Context, userID string, amount int64, kind string, taskID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ledgerErr != nil {
		return 0, r.ledgerErr
	}
	balance, ok := r.balances[userID]
	if !ok {
		return 0, model.ErrCreditsNotFound
	}
	txn := entity.DbCreditTransaction{UserID: userID, TaskID: taskID, Amount: amount, Type: kind}
	balance += txn.SignedAmount()
	r.balances[userID] = balance
	r.ledger = append(r.ledger, txn)
	return balance, nil
}

func (r *memoryRepo) ListCreditTransactions(_ context.Context, params *dto.CreditTransactionQuery) ([]entity.DbCreditTransaction, *entity.Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DbCreditTransaction
	for _, txn := range r.ledger {
		if params == nil || params.UserID == "" || txn.UserID == params.UserID {
			out = append(out, txn)
		}
	}
	return out, &entity.Meta{Page: 1, PageSize: int64(len(out)), Total: int64(len(out))}, nil
}

func (r *memoryRepo) task(id string) *entity.DbTask {
	task, _ := r.GetTask(context.Background(), id)
	return task
}

func (r *memoryRepo) checkpointCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.checkpoints)
}

var _ model.Repository = (*memoryRepo)(nil)

// scriptedService returns canned responses keyed by filename. failures[name]
// is the number of leading calls for that file that return an error.
type scriptedService struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
	panics   map[string]bool
	response string
	requests []llm.MetadataRequest

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
	// gate, when set, holds every call until it is closed.
	gate chan struct{}
}

func newScriptedService(response string) *scriptedService {
	return &scriptedService{
		calls:    map[string]int{},
		failures: map[string]int{},
		panics:   map[string]bool{},
		response: response,
	}
}

func (s *scriptedService) GenerateMetadata(ctx context.Context, request llm.MetadataRequest) (*llm.MetadataResponse, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.maxInFlight.Load()
		if current <= peak || s.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	key := request.Filename
	if request.ImageURL != "" {
		key = request.ImageURL
	}

	s.mu.Lock()
	s.calls[key]++
	call := s.calls[key]
	s.requests = append(s.requests, request)
	shouldPanic := s.panics[key]
	failures := s.failures[key]
	s.mu.Unlock()

	if shouldPanic {
		panic("provider exploded")
	}
	if call <= failures {
		return nil, errors.New("transient provider error")
	}
	return &llm.MetadataResponse{
		Data:  s.response,
		Usage: map[string]any{"total_tokens": float64(42)},
	}, nil
}

func (s *scriptedService) callsFor(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func staticFactory(svc llm.MetadataService) ClientFactory {
	return func(entity.ProviderKind, string) (llm.MetadataService, error) {
		return svc, nil
	}
}

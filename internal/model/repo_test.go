package model

import (
	"context"
	"metagen/internal/entity"
	"metagen/internal/entity/dto"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return repo
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	task := &entity.DbTask{
		ID:          "task-1",
		UserID:      "user-1",
		GeneratorID: "1",
		Files:       entity.FileRefList{{ID: "f1", Title: "a.jpg"}, {ID: "f2", Title: "b.jpg"}},
	}
	require.NoError(t, repo.CreateTask(ctx, task))

	got, err := repo.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusProcessing, got.Status)
	assert.Len(t, got.Files, 2)
	assert.Empty(t, got.Result)

	snapshot := entity.TaskProgressUpdates{
		Progress: 1,
		Result: entity.OutcomeList{
			{FileID: "f1", Metadata: entity.JSONMap{"Title": "A", "status": true}},
			{FileID: "f2", Metadata: entity.JSONMap{"status": false}},
		},
		Status:     entity.TaskStatusCompleted,
		AIProvider: "OPENAI",
	}
	require.NoError(t, repo.UpdateTaskProgress(ctx, "task-1", snapshot))
	// same snapshot twice is a no-op
	require.NoError(t, repo.UpdateTaskProgress(ctx, "task-1", snapshot))

	got, err = repo.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Progress)
	assert.Equal(t, entity.TaskStatusCompleted, got.Status)
	assert.Equal(t, "OPENAI", got.AIProvider)
	require.Len(t, got.Result, 2)
	assert.True(t, got.Result[0].Succeeded())
	assert.False(t, got.Result[1].Succeeded())

	charged := int64(2)
	path := "exports/task-1.csv"
	require.NoError(t, repo.UpdateTask(ctx, "task-1", entity.TaskUpdates{CreditsCharged: &charged, ExportPath: &path}))
	got, err = repo.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, charged, got.CreditsCharged)
	assert.Equal(t, path, got.ExportPath)

	require.NoError(t, repo.UpdateTaskStatus(ctx, "task-1", entity.TaskStatusFailed))
	got, err = repo.GetTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusFailed, got.Status)
}

func TestTaskNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, repo.UpdateTaskStatus(ctx, "missing", entity.TaskStatusFailed), ErrTaskNotFound)
}

func TestEnsureTaskKeepsExistingRow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	first, err := repo.EnsureTask(ctx, &entity.DbTask{ID: "t", UserID: "u1", GeneratorID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", first.UserID)

	second, err := repo.EnsureTask(ctx, &entity.DbTask{ID: "t", UserID: "u2", GeneratorID: "2"})
	require.NoError(t, err)
	assert.Equal(t, "u1", second.UserID)
	assert.Equal(t, "1", second.GeneratorID)
}

func TestCredits(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.GetCreditBalance(ctx, "user-1")
	assert.ErrorIs(t, err, ErrCreditsNotFound)

	_, err = repo.ApplyCreditDelta(ctx, "user-1", 5, entity.CreditTransactionUsage, "task-1")
	assert.ErrorIs(t, err, ErrCreditsNotFound)

	require.NoError(t, repo.SetCreditBalance(ctx, "user-1", 100))
	balance, err := repo.ApplyCreditDelta(ctx, "user-1", 6, entity.CreditTransactionUsage, "task-1")
	require.NoError(t, err)
	assert.Equal(t, int64(94), balance)

	balance, err = repo.ApplyCreditDelta(ctx, "user-1", 2, entity.CreditTransactionRefund, "task-1")
	require.NoError(t, err)
	assert.Equal(t, int64(96), balance)

	got, err := repo.GetCreditBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(96), got)

	_, err = repo.ApplyCreditDelta(ctx, "user-1", 0, entity.CreditTransactionUsage, "")
	assert.Error(t, err)
	_, err = repo.ApplyCreditDelta(ctx, "user-1", 1, "BONUS", "")
	assert.Error(t, err)

	txns, meta, err := repo.ListCreditTransactions(ctx, &dto.CreditTransactionQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	require.Len(t, txns, 2)
	var sum int64
	for _, txn := range txns {
		assert.NotEmpty(t, txn.ID)
		assert.Equal(t, "task-1", txn.TaskID)
		sum += txn.SignedAmount()
	}
	assert.Equal(t, int64(-4), sum)
}

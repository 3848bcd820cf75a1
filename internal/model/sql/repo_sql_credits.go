package sql

import (
	"context"
	"errors"
	"fmt"
	"metagen/internal/entity"
	"metagen/internal/entity/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCreditsNotFound is returned when the user has no credits row.
var ErrCreditsNotFound = errors.New("credits not found")

// GetCreditBalance returns the current balance of a user.
func (r *GormRepository) GetCreditBalance(ctx context.Context, userID string) (int64, error) {
	var credits entity.DbCredits
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&credits).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrCreditsNotFound
	}
	if err != nil {
		return 0, err
	}
	return credits.Balance, nil
}

// SetCreditBalance creates or overwrites a user's balance without touching the ledger.
func (r *GormRepository) SetCreditBalance(ctx context.Context, userID string, balance int64) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	credits := entity.DbCredits{UserID: userID, Balance: balance}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&credits).Error
}

// ApplyCreditDelta adjusts the balance by amount in the direction given by
// kind and appends a ledger entry, both in one transaction. It returns the
// balance after the change.
func (r *GormRepository) ApplyCreditDelta(ctx context.Context, userID string, amount int64, kind string, taskID string) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	txn := entity.DbCreditTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		TaskID: taskID,
		Amount: amount,
		Type:   kind,
	}
	switch kind {
	case entity.CreditTransactionUsage, entity.CreditTransactionRefund:
	default:
		return 0, fmt.Errorf("unknown credit transaction type: %s", kind)
	}

	var balance int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.DbCredits{}).
			Where("user_id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", txn.SignedAmount()))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCreditsNotFound
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		var credits entity.DbCredits
		if err := tx.Where("user_id = ?", userID).First(&credits).Error; err != nil {
			return err
		}
		balance = credits.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ListCreditTransactions pages through a user's ledger, newest first.
func (r *GormRepository) ListCreditTransactions(ctx context.Context, params *dto.CreditTransactionQuery) ([]entity.DbCreditTransaction, *entity.Meta, error) {
	if params == nil {
		params = &dto.CreditTransactionQuery{}
	}
	query := r.db.WithContext(ctx).Model(&entity.DbCreditTransaction{})
	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, params.Page, params.PageSize)
	var txns []entity.DbCreditTransaction
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(int((meta.Page - 1) * meta.PageSize)).
		Limit(int(meta.PageSize)).
		Find(&txns).Error
	if err != nil {
		return nil, nil, err
	}
	return txns, meta, nil
}

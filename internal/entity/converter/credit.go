package converter

import (
	"metagen/internal/entity/db"
	"metagen/internal/entity/dto"
)

// CreditTransactionsToItems converts ledger rows to response items.
func CreditTransactionsToItems(rows []db.CreditTransaction) []dto.CreditTransactionItem {
	items := make([]dto.CreditTransactionItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.CreditTransactionItem{
			ID:        row.ID,
			TaskID:    row.TaskID,
			Amount:    row.Amount,
			Type:      row.Type,
			CreatedAt: row.CreatedAt,
		})
	}
	return items
}

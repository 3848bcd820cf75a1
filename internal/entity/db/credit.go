package db

import "time"

const (
	CreditTransactionUsage  = "USAGE"
	CreditTransactionRefund = "REFUND"
)

// Credits 保存用户的积分余额。
type Credits struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:varchar(64)" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
}

// TableName 指定表名
func (Credits) TableName() string {
	return "credits"
}

// CreditTransaction 是只追加的积分流水。Amount 为正数，方向由 Type 决定。
type CreditTransaction struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(64)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	TaskID    string    `gorm:"column:task_id;type:varchar(64);index" json:"task_id"`
	Amount    int64     `gorm:"column:amount;not null" json:"amount"`
	Type      string    `gorm:"column:type;type:varchar(16);not null" json:"type"`
}

// TableName 指定表名
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// SignedAmount 返回对余额的影响，USAGE 为负。
func (t CreditTransaction) SignedAmount() int64 {
	if t.Type == CreditTransactionUsage {
		return -t.Amount
	}
	return t.Amount
}

package entity

// Re-export persistence and column types so callers depend on a single package.

import (
	"metagen/internal/entity/common"
	"metagen/internal/entity/db"
)

// Type aliases for common types
type StringArray = common.StringArray
type JSONMap = common.JSONMap
type Meta = common.Meta
type BaseParams = common.BaseParams
type FileRef = common.FileRef
type FileRefList = common.FileRefList
type Outcome = common.Outcome
type OutcomeList = common.OutcomeList

// Type aliases for database models
type DbTask = db.Task
type DbCredits = db.Credits
type DbCreditTransaction = db.CreditTransaction

// Constants
const (
	TaskStatusProcessing = db.TaskStatusProcessing
	TaskStatusCompleted  = db.TaskStatusCompleted
	TaskStatusFailed     = db.TaskStatusFailed

	CreditTransactionUsage  = db.CreditTransactionUsage
	CreditTransactionRefund = db.CreditTransactionRefund
)

package service

import (
	"context"
	"metagen/internal/entity"

	"github.com/sirupsen/logrus"
)

// unitRate 平台凭证的任务按较高费率计费
func (p *TaskProcessor) unitRate(req entity.ProcessTaskRequest) int64 {
	if req.OurAPI {
		return p.cfg.RatePlatformKey
	}
	return p.cfg.RateOwnKey
}

// charge 扣除 success × unitRate 积分。账本错误只记录日志，不影响任务状态。
func (p *TaskProcessor) charge(ctx context.Context, req entity.ProcessTaskRequest, success int, logger *logrus.Entry) int64 {
	if !p.cfg.BillingEnabled || success <= 0 || p.repo == nil {
		return 0
	}
	if req.UserID == "" {
		logger.Warn("task_billing_skipped_no_user")
		return 0
	}
	amount := int64(success) * p.unitRate(req)
	if amount <= 0 {
		return 0
	}

	fields := logrus.Fields{
		"user_id":      req.UserID,
		"amount":       amount,
		"platform_key": req.OurAPI,
	}
	balance, err := p.repo.ApplyCreditDelta(ctx, req.UserID, amount, entity.CreditTransactionUsage, req.TaskID)
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("task_billing_failed")
		return 0
	}
	logger.WithFields(fields).WithField("balance", balance).Info("task_billing_charged")

	if err := p.repo.UpdateTask(ctx, req.TaskID, entity.TaskUpdates{CreditsCharged: &amount}); err != nil {
		logger.WithError(err).Warn("task_billing_record_failed")
	}
	return amount
}

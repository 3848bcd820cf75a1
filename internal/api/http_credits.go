package api

import (
	"context"
	"errors"
	"metagen/internal/entity/converter"
	"metagen/internal/entity/dto"
	"metagen/internal/model"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetCredits 返回用户余额及最近的积分流水
func (h *HTTPHandler) GetCredits(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "database is not configured")
		return
	}
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		MissingField(c, "userId")
		return
	}

	var params dto.CreditTransactionQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c, err)
		return
	}
	params.UserID = userID
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), repoTimeout)
	defer cancel()

	balance, err := h.repo.GetCreditBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrCreditsNotFound) {
			NotFound(c, ErrCodeCreditsNotFound, "credits not found")
			return
		}
		logrus.WithError(err).WithField("user_id", userID).Error("failed to load credits")
		InternalError(c, "failed to load credits")
		return
	}

	txns, meta, err := h.repo.ListCreditTransactions(ctx, &params)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("failed to list credit transactions")
		InternalError(c, "failed to load credit transactions")
		return
	}

	c.JSON(http.StatusOK, dto.CreditsResponse{
		UserID:       userID,
		Balance:      balance,
		Transactions: converter.CreditTransactionsToItems(txns),
		Meta:         meta,
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/middleware"
)

func (h *Handler) RequestWithdrawal(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	var input models.WithdrawInput
	if err := c.BindJSON(&input); err != nil {
		newBadRequest(c, "invalid request body")
		return
	}

	currency, err := models.ParseCurrency(input.Currency)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		newBadRequest(c, "amount must be a decimal number")
		return
	}

	tx, err := h.service.Withdrawals.Request(c.Request.Context(), accountID, currency, amount, input.Destination)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"message":     "withdrawal requested, funds reserved until payout",
		"transaction": tx,
	})
}

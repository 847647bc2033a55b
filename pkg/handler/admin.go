package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/middleware"
)

func (h *Handler) ListUsers(c *gin.Context) {
	accounts, err := h.service.Accounts.List()
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"users": accounts,
	})
}

func (h *Handler) UserPortfolio(c *gin.Context) {
	portfolio, err := h.service.Portfolio.Value(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": portfolio,
	})
}

func (h *Handler) PendingInvestments(c *gin.Context) {
	txs, err := h.service.Investments.ListPending(models.KindInvestment)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"investments": txs,
	})
}

func (h *Handler) PendingWithdrawals(c *gin.Context) {
	txs, err := h.service.Investments.ListPending(models.KindWithdrawal)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"withdrawals": txs,
	})
}

func (h *Handler) ApproveInvestment(c *gin.Context) {
	tx, err := h.service.Approval.ApproveInvestment(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"message":     "investment approved",
		"transaction": tx,
	})
}

func (h *Handler) RejectInvestment(c *gin.Context) {
	tx, err := h.service.Approval.RejectInvestment(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"message":     "investment rejected",
		"transaction": tx,
	})
}

func (h *Handler) ConfirmWithdrawal(c *gin.Context) {
	tx, err := h.service.Approval.ConfirmWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"message":     "withdrawal confirmed",
		"transaction": tx,
	})
}

func (h *Handler) RejectWithdrawal(c *gin.Context) {
	tx, err := h.service.Approval.RejectWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"message":     "withdrawal rejected, funds returned",
		"transaction": tx,
	})
}

func (h *Handler) AdjustBalances(c *gin.Context) {
	adminID := c.GetString(middleware.CtxAccountID)

	var input models.AdjustInput
	if err := c.BindJSON(&input); err != nil {
		newBadRequest(c, "invalid request body")
		return
	}

	deltas := make(models.DeltaMap, len(input.Adjustments))
	for symbol, raw := range input.Adjustments {
		currency, err := models.ParseCurrency(symbol)
		if err != nil {
			newErrorResponse(c, err)
			return
		}
		delta, err := decimal.NewFromString(raw)
		if err != nil {
			newBadRequest(c, "adjustment deltas must be decimal numbers")
			return
		}
		deltas[currency] = delta
	}

	balances, tx, err := h.service.Approval.AdjustBalances(c.Request.Context(), input.AccountID, deltas, adminID)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"message":     "balances adjusted",
		"balances":    balances,
		"transaction": tx,
	})
}

func (h *Handler) UpdateRate(c *gin.Context) {
	var input models.RateInput
	if err := c.BindJSON(&input); err != nil {
		newBadRequest(c, "invalid request body")
		return
	}

	rate, err := h.service.Rates.SetRate(models.Currency(input.Symbol), input.USDRate)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"rate": rate,
	})
}

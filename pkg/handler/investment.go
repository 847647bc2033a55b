package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crypto_invest_back/models"
	"crypto_invest_back/pkg/middleware"
)

// SubmitInvestment accepts a multipart form: amount, crypto_type and the
// receipt file. The receipt goes to the receipt store; its reference lands on
// the pending transaction.
func (h *Handler) SubmitInvestment(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	currency, err := models.ParseCurrency(c.PostForm("crypto_type"))
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	amount, err := decimal.NewFromString(c.PostForm("amount"))
	if err != nil {
		newBadRequest(c, "amount must be a decimal number")
		return
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		newBadRequest(c, "receipt file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		newBadRequest(c, "receipt file is not readable")
		return
	}
	defer file.Close()

	receiptRef, err := h.receipts.Save(fileHeader.Filename, file)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	tx, err := h.service.Investments.Submit(c.Request.Context(), accountID, currency, amount, receiptRef)
	if err != nil {
		newErrorResponse(c, err)
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"message":     "investment submitted, pending admin approval",
		"transaction": tx,
	})
}

func (h *Handler) MyTransactions(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	kind := models.TransactionKind(c.Query("kind"))
	txs, err := h.service.Investments.ListByAccount(accountID, kind, 0)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"transactions": txs,
	})
}

func (h *Handler) Dashboard(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	dashboard, err := h.service.Portfolio.Dashboard(c.Request.Context(), accountID)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": dashboard,
	})
}

func (h *Handler) Portfolio(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)

	portfolio, err := h.service.Portfolio.Value(c.Request.Context(), accountID)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"data": portfolio,
	})
}

func (h *Handler) DepositWallets(c *gin.Context) {
	wallets, err := h.service.DepositWallets.List()
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"wallets": wallets,
	})
}

func (h *Handler) Rates(c *gin.Context) {
	rates, err := h.service.Rates.List()
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"rates": rates,
	})
}

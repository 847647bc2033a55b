package handler

import (
	"github.com/gin-gonic/gin"

	"crypto_invest_back/models"
)

func (h *Handler) CreateAccount(c *gin.Context) {
	var input models.Account
	if err := c.BindJSON(&input); err != nil {
		newBadRequest(c, "invalid request body")
		return
	}

	acc, err := h.service.Accounts.Create(input)
	if err != nil {
		newErrorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"account": acc,
	})
}

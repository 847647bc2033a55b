package handler

import (
	"crypto_invest_back/pkg/middleware"
	"crypto_invest_back/pkg/service"
	"crypto_invest_back/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service  *service.Service
	receipts *storage.ReceiptStore
}

func NewHandler(service *service.Service, receipts *storage.ReceiptStore) *Handler {
	return &Handler{
		service:  service,
		receipts: receipts,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Account-ID", "X-Account-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	router.Static("/uploads", h.receipts.Dir())

	router.POST("/accounts", h.CreateAccount)

	api := router.Group("/api", middleware.Identity())
	{
		api.GET("/dashboard", h.Dashboard)
		api.GET("/portfolio", h.Portfolio)
		api.GET("/transactions", h.MyTransactions)
		api.POST("/investments", h.SubmitInvestment)
		api.POST("/withdrawals", h.RequestWithdrawal)
		api.GET("/crypto/wallets", h.DepositWallets)
		api.GET("/crypto/rates", h.Rates)

		notifications := api.Group("/notifications")
		{
			notifications.GET("/", h.Notifications)
			notifications.POST("/read", h.MarkNotificationsRead)
			notifications.GET("/unread-count", h.UnreadCount)
		}

		admin := api.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/users", h.ListUsers)
			admin.GET("/users/:id/portfolio", h.UserPortfolio)
			admin.GET("/investments", h.PendingInvestments)
			admin.GET("/withdrawals", h.PendingWithdrawals)
			admin.POST("/investments/:id/approve", h.ApproveInvestment)
			admin.POST("/investments/:id/reject", h.RejectInvestment)
			admin.POST("/withdrawals/:id/confirm", h.ConfirmWithdrawal)
			admin.POST("/withdrawals/:id/reject", h.RejectWithdrawal)
			admin.POST("/adjustments", h.AdjustBalances)
			admin.PUT("/rates", h.UpdateRate)
		}
	}
	return router
}

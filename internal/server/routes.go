package server

import (
	"github.com/labstack/echo/v4"

	"example.com/splitmyexpenses/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	categoryHandler *handlers.CategoryHandler,
	groupHandler *handlers.GroupHandler,
	expenseHandler *handlers.ExpenseHandler,
	splitHandler *handlers.SplitHandler,
	receiptHandler *handlers.ReceiptHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	classifierRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)
	authGroup.GET("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/verify-email/resend", authHandler.ResendVerification, authMiddleware)
	authGroup.GET("/google", authHandler.GoogleURL)
	authGroup.POST("/google/callback", authHandler.GoogleCallback)

	categories := api.Group("/categories", authMiddleware)
	categories.GET("", categoryHandler.List)

	groups := api.Group("/groups", authMiddleware)
	groups.POST("", groupHandler.Create)
	groups.GET("", groupHandler.List)
	groups.GET("/:id", groupHandler.Get)
	groups.PUT("/:id", groupHandler.Update)
	groups.DELETE("/:id", groupHandler.Delete)

	expenses := api.Group("/expenses", authMiddleware)
	expenses.POST("", expenseHandler.Create)
	expenses.GET("", expenseHandler.List)
	expenses.GET("/summary", expenseHandler.Summary)
	expenses.POST("/detect-category", expenseHandler.DetectCategory, classifierRateLimiter)
	expenses.GET("/:id", expenseHandler.Get)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)
	expenses.GET("/:id/splits", splitHandler.ListForExpense)
	expenses.POST("/:id/receipts", receiptHandler.Upload)
	expenses.GET("/:id/receipts", receiptHandler.List)

	splits := api.Group("/splits", authMiddleware)
	splits.GET("", splitHandler.Mine)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}

package api

import (
	"net/http"

	"fixoo-backend/internal/api/middleware"
	"fixoo-backend/internal/models"
	"fixoo-backend/internal/modules/admin"
	"fixoo-backend/internal/modules/order"
	"fixoo-backend/internal/modules/user"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	userHandler *user.Handler,
	orderHandler *order.Handler,
	adminHandler *admin.Handler,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)
	clientRequired := middleware.RoleRequired(models.RoleClient, models.RoleAdmin)
	specialistRequired := middleware.RoleRequired(models.RoleSpecialist, models.RoleAdmin)
	adminRequired := middleware.AdminRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Fixoo marketplace API"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
	}

	// --- Profile Routes ---
	profileGroup := e.Group("/profile", authMiddleware)
	{
		profileGroup.GET("", userHandler.GetMyProfile)
		profileGroup.PUT("", userHandler.UpdateMyProfile)
	}

	// --- Order Routes ---
	orderGroup := e.Group("/orders", authMiddleware)
	{
		orderGroup.POST("", orderHandler.CreateOrder, clientRequired)
		orderGroup.GET("", orderHandler.ListMyOrders)
		orderGroup.GET("/pending", orderHandler.ListPending, specialistRequired)
		orderGroup.GET("/:orderId", orderHandler.GetOrder)
		orderGroup.PUT("/:orderId", orderHandler.UpdateOrder, clientRequired)
		orderGroup.DELETE("/:orderId", orderHandler.DeleteOrder)
		orderGroup.POST("/:orderId/accept", orderHandler.AcceptOrder, specialistRequired)
		orderGroup.PATCH("/:orderId/status", orderHandler.UpdateOrderStatus)
		orderGroup.POST("/:orderId/rate", orderHandler.RateOrder, clientRequired)
	}

	// --- Admin Routes ---
	adminGroup := e.Group("/admin", authMiddleware, adminRequired)
	{
		adminGroup.GET("/orders", adminHandler.GetAllOrders)
		adminGroup.GET("/users", adminHandler.GetAllUsers)
		adminGroup.GET("/stats", adminHandler.GetStatsOverview)
		adminGroup.GET("/stats/date/:date", adminHandler.GetStatsByDate)
		adminGroup.GET("/stats/range", adminHandler.GetStatsByRange)
		adminGroup.GET("/stats/chart", adminHandler.GetChartSeries)
	}
}

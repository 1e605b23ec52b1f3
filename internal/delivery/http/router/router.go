// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"farmlink/internal/delivery/http/middleware"
	"farmlink/internal/delivery/http/router/handler"
	"farmlink/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	SessionHandler *handler.SessionHandler
	OrderHandler   *handler.OrderHandler
	ChatHandler    *handler.ChatHandler
	DeviceHandler  *handler.DeviceHandler
	WSHandler      *handler.WSHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	sessionHandler *handler.SessionHandler
	orderHandler   *handler.OrderHandler
	chatHandler    *handler.ChatHandler
	deviceHandler  *handler.DeviceHandler
	wsHandler      *handler.WSHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		sessionHandler: params.SessionHandler,
		orderHandler:   params.OrderHandler,
		chatHandler:    params.ChatHandler,
		deviceHandler:  params.DeviceHandler,
		wsHandler:      params.WSHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Realtime gateway. Authentication happens inside the handler so a bad
	// token never fails the websocket handshake.
	e.GET("/ws", r.wsHandler.Handle)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register/customer", r.authHandler.RegisterCustomer)
		authGroup.POST("/register/farmer", r.authHandler.RegisterFarmer)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh-token", r.authHandler.RefreshToken)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/logout-all", r.authHandler.LogoutAllDevices, r.authMiddleware.RequireAuth)

		authGroup.GET("/sessions", r.sessionHandler.ListSessions, r.authMiddleware.RequireAuth)
		authGroup.DELETE("/sessions/:id", r.sessionHandler.TerminateSession, r.authMiddleware.RequireAuth)
	}

	// Order routes
	orderGroup := e.Group("/orders")
	orderGroup.Use(r.authMiddleware.RequireAuth)
	{
		orderGroup.POST("", r.orderHandler.CreateOrder, r.authMiddleware.RequireRole(entity.RoleCustomer))
		orderGroup.GET("/my-orders", r.orderHandler.ListMyOrders)
		orderGroup.GET("/farmer-orders", r.orderHandler.ListFarmerOrders, r.authMiddleware.RequireRole(entity.RoleFarmer))
		orderGroup.GET("/:id", r.orderHandler.GetOrder)
		orderGroup.PUT("/:id/accept", r.orderHandler.AcceptOrder, r.authMiddleware.RequireRole(entity.RoleFarmer))
		orderGroup.PUT("/:id/reject", r.orderHandler.RejectOrder, r.authMiddleware.RequireRole(entity.RoleFarmer))
	}

	// Chat routes
	chatGroup := e.Group("/chat")
	chatGroup.Use(r.authMiddleware.RequireAuth)
	{
		chatGroup.POST("/conversations", r.chatHandler.StartConversation)
		chatGroup.GET("/conversations", r.chatHandler.ListConversations)
		chatGroup.GET("/conversations/:id", r.chatHandler.GetConversation)
		chatGroup.POST("/conversations/:id/read", r.chatHandler.MarkAsRead)
	}

	// Push notification device routes
	deviceGroup := e.Group("/notifications/devices")
	deviceGroup.Use(r.authMiddleware.RequireAuth)
	{
		deviceGroup.POST("", r.deviceHandler.RegisterDevice)
		deviceGroup.GET("", r.deviceHandler.ListDevices)
		deviceGroup.DELETE("/:id", r.deviceHandler.UnregisterDevice)
	}
}

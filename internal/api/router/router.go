package router

import (
	"social_network_service/internal/api/handlers"
	"social_network_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes 注册用户相关的路由
// @title Social Network Service API
// @version 1.0
// @description API documentation for Social Network Service
// @host localhost:8080
// @BasePath /
func RegisterRoutes(app *fiber.App, memberHandler *handlers.MemberHandler) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	memberRoutes := app.Group("/member")
	memberRoutes.Post("/register", memberHandler.Register)
	memberRoutes.Post("/login", memberHandler.Login)
	memberRoutes.Get("/find", memberHandler.FindByEmail)

	memberRoutes.Use(middlewares.JWTMiddleware())
	memberRoutes.Post("/logout", memberHandler.Logout)
	memberRoutes.Post("/follow/:target_id", memberHandler.Follow)
	memberRoutes.Delete("/follow/:target_id", memberHandler.Unfollow)
	memberRoutes.Get("/following", memberHandler.Following)
}

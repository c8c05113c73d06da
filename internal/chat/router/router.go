package router

import (
	"bytes"
	"context"

	"social_network_service/internal/chat/app"
	"social_network_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册聊天相關的路由
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler, chatListUC *app.ChatListUseCase, messageUC *app.MessageUseCase) {
	r.Use(middlewares.JWTMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))

	// 清單與歷史也開 REST，給非長連線的客戶端輪詢用
	r.Get("/chats", func(c *fiber.Ctx) error {
		userID, ok := c.Locals(middlewares.TokenUserID).(string)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		overview, err := chatListUC.LoadInitial(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"chats":    overview.Active,
			"requests": overview.Requests,
			"unread":   overview.Unread,
		})
	})

	r.Get("/chats/:chatID/messages", func(c *fiber.Ctx) error {
		userID, ok := c.Locals(middlewares.TokenUserID).(string)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		history, err := messageUC.History(c.Context(), userID, c.Params("chatID"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{
			"messages":   history.Messages,
			"is_request": history.IsRequest,
		})
	})

	// 附件走 REST，websocket 只帶 object name
	r.Post("/chats/:chatID/attachments", func(c *fiber.Ctx) error {
		userID, ok := c.Locals(middlewares.TokenUserID).(string)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		body := c.Body()
		objectName, err := messageUC.UploadAttachment(
			c.Context(),
			userID,
			c.Params("chatID"),
			bytes.NewReader(body),
			int64(len(body)),
			c.Get(fiber.HeaderContentType),
		)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"attachment": objectName})
	})

	r.Get("/attachments/url", func(c *fiber.Ctx) error {
		objectName := c.Query("object")
		if objectName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "object is required"})
		}
		url, err := messageUC.AttachmentURL(c.Context(), objectName)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"url": url})
	})
}

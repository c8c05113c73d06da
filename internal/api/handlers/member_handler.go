package handlers

import (
	"context"
	"fmt"

	"social_network_service/internal/member/app"
	"social_network_service/internal/member/domain"
	"social_network_service/pkg/logger"
	"social_network_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MemberHandler 处理用户相关的 HTTP 请求
type MemberHandler struct {
	Usecase app.MemberUseCase
}

// NewMemberHandler 创建新的 MemberHandler
func NewMemberHandler(usecase app.MemberUseCase) *MemberHandler {
	return &MemberHandler{
		Usecase: usecase,
	}
}

// Register 注册新用户
// @Summary 注册新用户
// @Description 处理用户注册请求
// @Tags Members
// @Accept json
// @Produce json
// @Param request body object true "注册请求"
// @Success 200 {object} string "注册成功"
// @Failure 400 {object} string "请求错误"
// @Failure 500 {object} string "服务器错误"
// @Router /member/register [post]
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Info("Register request", zap.String("email", req.Email), zap.String("username", req.Username))

	if err := h.Usecase.Register(context.Background(), req.Email, req.Username, req.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "register success"})
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户通过邮箱和密码登录
// @Tags Members
// @Accept json
// @Produce json
// @Param request body object true "用户登录信息"
// @Success 200 {object} string "登录成功"
// @Failure 400 {object} string "请求错误"
// @Failure 401 {object} string "登录失败"
// @Router /member/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login", zap.String("Email", req.Email))

	token, err := h.Usecase.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"token": token, "message": "login success"})
}

// Logout 用户登出
// @Summary 用户登出
// @Description 注销用户会话
// @Tags Members
// @Accept json
// @Produce json
// @Param auth query string false "用户登出信息"
// @Success 200 {object} string "注销成功"
// @Failure 400 {object} string "请求错误"
// @Failure 500 {object} string "服务器错误"
// @Router /member/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("c.Locals(%s) is nil", middlewares.TokenUserID)})
	}

	if err := h.Usecase.ForceLogout(context.Background(), memberID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "logout success"})
}

// FindByEmail 查找用户信息
// @Summary 查找用户信息
// @Description 根据邮箱查找用户信息
// @Tags Members
// @Accept json
// @Produce json
// @Param email query string true "用户邮箱"
// @Success 200 {object} string "用户信息"
// @Failure 400 {object} string "请求错误"
// @Failure 404 {object} string "未找到用户"
// @Router /member/find [get]
func (h *MemberHandler) FindByEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}

	member, err := h.Usecase.FindMember(context.Background(), &domain.MemberQuery{Email: &email})
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":       member.MemberID,
			"email":    member.Email,
			"username": member.Username,
		},
	})
}

// Follow 追蹤用户
// @Summary 追蹤用户
// @Description 追蹤指定的用户
// @Tags Members
// @Accept json
// @Produce json
// @Param target_id path string true "被追蹤者 ID"
// @Success 200 {object} string "追蹤成功"
// @Failure 400 {object} string "请求错误"
// @Router /member/follow/{target_id} [post]
func (h *MemberHandler) Follow(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := h.Usecase.Follow(context.Background(), memberID, c.Params("target_id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "follow success"})
}

// Unfollow 取消追蹤
// @Summary 取消追蹤
// @Description 取消追蹤指定的用户
// @Tags Members
// @Accept json
// @Produce json
// @Param target_id path string true "被追蹤者 ID"
// @Success 200 {object} string "取消追蹤成功"
// @Failure 400 {object} string "请求错误"
// @Router /member/follow/{target_id} [delete]
func (h *MemberHandler) Unfollow(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := h.Usecase.Unfollow(context.Background(), memberID, c.Params("target_id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "unfollow success"})
}

// Following 追蹤清單
// @Summary 追蹤清單
// @Description 列出自己追蹤中的用户
// @Tags Members
// @Accept json
// @Produce json
// @Success 200 {object} string "追蹤清單"
// @Failure 401 {object} string "未登入"
// @Router /member/following [get]
func (h *MemberHandler) Following(c *fiber.Ctx) error {
	memberID, ok := c.Locals(middlewares.TokenUserID).(string)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	ids, err := h.Usecase.ListFollowing(context.Background(), memberID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"following": ids})
}

package controllers

import (
	"context"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/internal/tasks"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"
	"github.com/microaistudio/hptourism-r1-sub000/token"
	"github.com/microaistudio/hptourism-r1-sub000/users/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/users/services"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	accessTokenDuration  = 15 * time.Minute
	refreshTokenDuration = 7 * 24 * time.Hour
)

type LoginController struct {
	UserRepo    repositories.UserRepository
	PasetoMaker token.Maker
	Ctx         context.Context
	RedisClient *redis.Client
	TaskClient  *asynq.Client
}

// LoginUser verifies the credentials and starts the second factor: an email
// OTP, or the enrolled authenticator app when present.
func (lc *LoginController) LoginUser(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing login request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	user, err := lc.UserRepo.GetUserByEmail(req.Email)
	if err != nil || !services.CheckPasswordHash(req.Password, user.Password) {
		config.Logger.Warn("Login attempt failed", zap.String("email", req.Email))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"data":    nil,
			"error":   "Invalid email or password.",
		})
	}

	if !user.Active || user.IsSuspended {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Account unavailable",
			"data":    nil,
			"error":   "This account is inactive or suspended.",
		})
	}

	otpService := services.NewOtpService(lc.RedisClient, lc.Ctx)

	if otpService.IsTOTPEnabled(user.ID.String()) {
		_, preToken := otpService.GenerateOtp("login_otp:" + user.ID.String())
		return c.JSON(fiber.Map{
			"message": "TOTP verification required",
			"data": fiber.Map{
				"requires_totp": true,
				"user_id":       user.ID.String(),
				"pre_token":     preToken,
			},
			"error": nil,
		})
	}

	otp, preToken := otpService.GenerateOtp("login_otp:" + user.ID.String())
	lc.sendLoginOTP(user, otp)

	return c.JSON(fiber.Map{
		"message": "OTP sent successfully",
		"data": fiber.Map{
			"requires_totp": false,
			"pre_token":     preToken,
			"user_id":       user.ID.String(),
		},
		"error": nil,
	})
}

func (lc *LoginController) sendLoginOTP(user *models.User, otp string) {
	if lc.TaskClient == nil {
		return
	}

	task, err := tasks.NewLoginOTPTask(tasks.LoginOTPPayload{
		Email: user.Email,
		Name:  user.FirstName,
		OTP:   otp,
	})
	if err != nil {
		config.Logger.Error("failed to build login OTP task", zap.Error(err))
		return
	}
	if _, err := lc.TaskClient.Enqueue(task); err != nil {
		config.Logger.Error("failed to enqueue login OTP", zap.Error(err))
	}
}

// ValidateOtp completes a login: the one-time code is exchanged for the
// access/refresh cookie pair and the refresh token is registered in Redis.
func (lc *LoginController) ValidateOtp(c *fiber.Ctx) error {
	type ValidateOtpRequest struct {
		UserId   string `json:"user_id"`
		Otp      string `json:"otp"`
		PreToken string `json:"pre_token"`
	}

	var req ValidateOtpRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing OTP validation request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	otpService := services.NewOtpService(lc.RedisClient, lc.Ctx)
	if !otpService.ValidateOtp(req.Otp, req.PreToken, "login_otp:"+req.UserId) {
		config.Logger.Warn("OTP validation failed", zap.String("user_id", req.UserId))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "OTP validation failed",
			"data":    nil,
			"error":   "Invalid OTP or pre-token.",
		})
	}

	return lc.issueSession(c, req.UserId)
}

// ValidateTotp completes a login for accounts with an enrolled
// authenticator app.
func (lc *LoginController) ValidateTotp(c *fiber.Ctx) error {
	type ValidateTotpRequest struct {
		UserId   string `json:"user_id"`
		Code     string `json:"code"`
		PreToken string `json:"pre_token"`
	}

	var req ValidateTotpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	otpService := services.NewOtpService(lc.RedisClient, lc.Ctx)
	if !otpService.ValidateTOTPCode(req.UserId, req.Code) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "TOTP validation failed",
			"data":    nil,
			"error":   "Invalid authenticator code.",
		})
	}
	otpService.InvalidateOtp("login_otp:" + req.UserId)

	return lc.issueSession(c, req.UserId)
}

func (lc *LoginController) issueSession(c *fiber.Ctx, userID string) error {
	user, err := lc.UserRepo.GetUserByID(userID)
	if err != nil {
		config.Logger.Error("Error fetching user during session issue",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"data":    nil,
			"error":   "Invalid user or session.",
		})
	}

	accessToken, err := lc.PasetoMaker.CreateToken(user.Email, user.Role, accessTokenDuration)
	if err != nil {
		config.Logger.Error("Error generating access token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred during token generation.",
		})
	}

	refreshToken, err := lc.PasetoMaker.CreateToken(user.Email, user.Role, refreshTokenDuration)
	if err != nil {
		config.Logger.Error("Error generating refresh token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred during token generation.",
		})
	}

	if err := lc.RedisClient.Set(lc.Ctx, "refresh_token:"+refreshToken, user.ID.String(), refreshTokenDuration).Err(); err != nil {
		config.Logger.Error("Error storing refresh token in Redis", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred during session management.",
		})
	}

	middleware.SetAuthCookies(c, accessToken, refreshToken)

	now := time.Now()
	user.LastLoginAt = &now
	if _, err := lc.UserRepo.UpdateUser(user); err != nil {
		config.Logger.Warn("Failed to record last login time", zap.Error(err))
	}

	sanitized := models.User{
		ID:        user.ID,
		Active:    user.Active,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		District:  user.District,
		CreatedAt: user.CreatedAt,
		CreatedBy: user.CreatedBy,
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"data": fiber.Map{
			"user": sanitized,
		},
		"error": nil,
	})
}

// Logout invalidates the refresh token and clears both cookies.
func (lc *LoginController) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		if err := lc.RedisClient.Del(lc.Ctx, "refresh_token:"+refreshToken).Err(); err != nil {
			config.Logger.Warn("Failed to delete refresh token on logout", zap.Error(err))
		}
	}

	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true, Path: "/"})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true, Path: "/"})

	return c.JSON(fiber.Map{
		"message": "Logged out",
		"data":    nil,
		"error":   nil,
	})
}

// SetupTOTP begins authenticator enrolment for the logged-in account.
func (lc *LoginController) SetupTOTP(c *fiber.Ctx) error {
	user, err := services.CurrentUser(c, lc.UserRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	otpService := services.NewOtpService(lc.RedisClient, lc.Ctx)
	setup, err := otpService.GenerateTOTPSecret(user.ID.String(), user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not start authenticator setup.",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Scan the QR code and confirm with a code",
		"data":    setup,
		"error":   nil,
	})
}

// ConfirmTOTP finishes authenticator enrolment.
func (lc *LoginController) ConfirmTOTP(c *fiber.Ctx) error {
	type ConfirmRequest struct {
		Code string `json:"code"`
	}

	user, err := services.CurrentUser(c, lc.UserRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	if err := services.NewOtpService(lc.RedisClient, lc.Ctx).EnableTOTP(user.ID.String(), req.Code); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "TOTP confirmation failed",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Authenticator enabled",
		"data":    nil,
		"error":   nil,
	})
}

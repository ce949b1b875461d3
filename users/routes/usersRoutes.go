package router

import (
	"context"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/middleware"
	"github.com/microaistudio/hptourism-r1-sub000/users/controllers"
	"github.com/microaistudio/hptourism-r1-sub000/users/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func InitUserRoutes(
	app *fiber.App,
	userRepo repositories.UserRepository,
	ctx context.Context,
	redisClient *redis.Client,
	appContext *middleware.AppContext,
	taskClient *asynq.Client,
) {
	loginController := &controllers.LoginController{
		UserRepo:    userRepo,
		PasetoMaker: appContext.PasetoMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
		TaskClient:  taskClient,
	}
	userController := &controllers.UserController{UserRepo: userRepo}

	// Public routes (no authentication required). Rate limited per IP so a
	// single host cannot brute-force credentials or flood OTP mail.
	publicRoutes := app.Group("/api/v1", middleware.RateLimit(10*time.Second, 5))
	{
		publicRoutes.Post("/auth/register", userController.RegisterOwner)
		publicRoutes.Post("/auth/login", loginController.LoginUser)
		publicRoutes.Post("/auth/verify-otp", loginController.ValidateOtp)
		publicRoutes.Post("/auth/verify-totp", loginController.ValidateTotp)
	}

	// Protected routes
	protectedRoutes := app.Group("/api/v1", middleware.ProtectedRoute(appContext))
	{
		protectedRoutes.Post("/auth/logout", loginController.Logout)
		protectedRoutes.Post("/auth/totp/setup", loginController.SetupTOTP)
		protectedRoutes.Post("/auth/totp/confirm", loginController.ConfirmTOTP)

		protectedRoutes.Post("/users",
			middleware.RequireRoles(models.AdminRole), userController.CreateOfficer)
		protectedRoutes.Get("/filtered-users",
			middleware.RequireRoles(models.AdminRole), userController.GetFilteredUsers)
		protectedRoutes.Get("/district-inspectors",
			middleware.RequireRoles(models.DistrictOfficerRole, models.AdminRole),
			userController.GetDistrictInspectors)
	}
}

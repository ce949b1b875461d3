package controllers

import (
	"strings"

	"github.com/microaistudio/hptourism-r1-sub000/config"
	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/users/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/users/services"
	"github.com/microaistudio/hptourism-r1-sub000/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserController struct {
	UserRepo repositories.UserRepository
}

type createUserRequest struct {
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Password  string        `json:"password"`
	Gender    models.Gender `json:"gender"`
	Role      models.Role   `json:"role"`
	District  *string       `json:"district"`
}

func (req *createUserRequest) validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.FirstName) == "" {
		problems["first_name"] = "first name is required"
	}
	if !strings.Contains(req.Email, "@") {
		problems["email"] = "a valid email is required"
	}
	if len(req.Password) < 8 {
		problems["password"] = "password must be at least 8 characters"
	}
	if req.Role.DistrictScoped() && (req.District == nil || *req.District == "") {
		problems["district"] = "district is required for this role"
	}
	return problems
}

// RegisterOwner is the public self-registration endpoint for property
// owners. The role is fixed; nobody registers themselves as an officer.
func (uc *UserController) RegisterOwner(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}
	req.Role = models.OwnerRole

	return uc.create(c, &req, "self-registration")
}

// CreateOfficer lets administrators provision department accounts.
func (uc *UserController) CreateOfficer(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}

	switch req.Role {
	case models.ScrutinyClerkRole, models.DistrictOfficerRole, models.StateApproverRole, models.AdminRole:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Unsupported officer role.",
		})
	}

	creator, err := services.CurrentUser(c, uc.UserRepo)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required",
		})
	}

	return uc.create(c, &req, creator.ID.String())
}

func (uc *UserController) create(c *fiber.Ctx, req *createUserRequest, createdBy string) error {
	if problems := req.validate(); len(problems) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"data":    problems,
			"error":   "Please correct the highlighted fields.",
		})
	}

	if _, err := uc.UserRepo.GetUserByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Account exists",
			"data":    nil,
			"error":   "An account with this email already exists.",
		})
	}

	hashed, err := services.HashPassword(req.Password)
	if err != nil {
		config.Logger.Error("Failed to hash password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred.",
		})
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Password:  hashed,
		Gender:    req.Gender,
		Role:      req.Role,
		District:  req.District,
		Active:    true,
		CreatedBy: createdBy,
	}

	created, err := uc.UserRepo.CreateUser(user)
	if err != nil {
		config.Logger.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not create the account.",
		})
	}

	created.Password = ""
	config.Logger.Info("user account created",
		zap.String("email", created.Email),
		zap.String("role", string(created.Role)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created",
		"data":    fiber.Map{"user": created},
		"error":   nil,
	})
}

// GetFilteredUsers pages through accounts for the admin console.
func (uc *UserController) GetFilteredUsers(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	offset := (params.Page - 1) * params.PageSize
	users, total, err := uc.UserRepo.GetFilteredUsers(params.PageSize, offset, params.Filters)
	if err != nil {
		config.Logger.Error("Failed to list users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not list accounts.",
		})
	}

	for i := range users {
		users[i].Password = ""
	}

	return c.JSON(fiber.Map{
		"message": "Users retrieved",
		"data":    pagination.NewPaginatedResponse(c, users, total, params),
		"error":   nil,
	})
}

// GetDistrictInspectors lists active district officers available as
// inspection assignees for the caller's district.
func (uc *UserController) GetDistrictInspectors(c *fiber.Ctx) error {
	district := c.Query("district")
	if district == "" {
		actor, err := services.CurrentUser(c, uc.UserRepo)
		if err != nil || actor.District == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request",
				"data":    nil,
				"error":   "A district is required.",
			})
		}
		district = *actor.District
	}

	officers, err := uc.UserRepo.GetOfficersByDistrict(models.DistrictOfficerRole, district)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "Could not list officers.",
		})
	}

	for i := range officers {
		officers[i].Password = ""
	}

	return c.JSON(fiber.Map{
		"message": "Officers retrieved",
		"data":    fiber.Map{"officers": officers},
		"error":   nil,
	})
}

package services

import (
	"errors"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
	"github.com/microaistudio/hptourism-r1-sub000/token"
	"github.com/microaistudio/hptourism-r1-sub000/users/repositories"

	"github.com/gofiber/fiber/v2"
)

var ErrNoAuthenticatedUser = errors.New("no authenticated user on request")

// CurrentUser resolves the authenticated token payload on the request into
// the full account record.
func CurrentUser(c *fiber.Ctx, userRepo repositories.UserRepository) (*models.User, error) {
	payload, ok := c.Locals("user").(*token.Payload)
	if !ok {
		return nil, ErrNoAuthenticatedUser
	}

	user, err := userRepo.GetUserByEmail(payload.Email)
	if err != nil {
		return nil, err
	}
	if !user.Active || user.IsSuspended {
		return nil, ErrNoAuthenticatedUser
	}
	return user, nil
}

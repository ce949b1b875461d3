package token

import (
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"
)

// Maker defines a contract for anything that can create and verify tokens.
// Allows swapping the token implementation without changing the rest of the
// application logic.
type Maker interface {
	CreateToken(email string, role models.Role, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}

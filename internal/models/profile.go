package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles
const (
	RoleBuyer  = "buyer"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// Profile is the identity unit across the marketplace. All ownership columns
// reference profile ids.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

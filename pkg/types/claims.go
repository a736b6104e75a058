package types

import "github.com/golang-jwt/jwt/v5"

// Platform roles carried in the access token.
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleReviewer  = "reviewer"
	RoleApplicant = "applicant"
	RoleSystem    = "system"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Actor identifies who performs an action, for authorization and audit
// attribution.
type Actor struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// SystemActor is used by scheduled tasks that act without a user.
var SystemActor = Actor{UserID: 0, Role: RoleSystem}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin || a.Role == RoleSystem
}

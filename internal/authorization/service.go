package authorization

import (
	"context"
	"errors"
	"slices"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin       = "Admin"
	RoleConnoisseur = "Movie Connoisseur"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidActor = errors.New("invalid_actor")
	ErrInvalidRole  = errors.New("invalid_role")
)

// Caller is the authenticated user and the roles resolved for this request.
type Caller struct {
	UserID snowflake.ID
	Roles  []string
}

func (c Caller) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

func (c Caller) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

func (c Caller) IsCustomer() bool {
	return c.HasRole(RoleConnoisseur)
}

// PrimaryRole is the role recorded on audit entries and logs.
func (c Caller) PrimaryRole() string {
	switch {
	case c.IsAdmin():
		return RoleAdmin
	case c.IsCustomer():
		return RoleConnoisseur
	case len(c.Roles) > 0:
		return c.Roles[0]
	default:
		return ""
	}
}

type Service interface {
	// Resolve loads the caller's roles.
	Resolve(ctx context.Context, userID snowflake.ID) (Caller, error)
	AssignRole(ctx context.Context, userID snowflake.ID, role string) error
	RolesFor(ctx context.Context, userID snowflake.ID) ([]string, error)
	// Authorize returns ErrForbidden unless one of the caller's roles grants action on object.
	Authorize(ctx context.Context, caller Caller, object, action string) error
}

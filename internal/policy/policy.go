// Package policy holds the ownership rules shared by every mutating operation.
package policy

import (
	"strconv"

	"anoa.com/recipehub/internal/entity"
	"anoa.com/recipehub/pkg/apperror"
)

// Actor is the authenticated principal of a request.
type Actor struct {
	ID    uint
	Email string
	Role  entity.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// RequireOwnerOrAdmin allows the record owner or any admin.
func RequireOwnerOrAdmin(ownerID uint, actor Actor) error {
	if actor.IsAdmin() || (actor.ID != 0 && actor.ID == ownerID) {
		return nil
	}
	return apperror.Forbidden("you are not allowed to modify this resource")
}

func RequireAdmin(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return apperror.Forbidden("admin access required")
}

// ParseID converts a path or body identifier to the canonical id type.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid id: " + strconv.Quote(raw))
	}
	return uint(id), nil
}

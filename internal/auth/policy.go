package auth

import (
	"fmt"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/google/uuid"
)

// CanUpdateUser reports whether actor may modify the user targetID. Users may
// edit their own profile but not their role; admins may edit anyone.
func CanUpdateUser(actor *Identity, targetID uuid.UUID, changesRole bool) error {
	if actor == nil {
		return fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID != targetID {
		return fmt.Errorf("%w: cannot modify another user", ErrForbidden)
	}
	if changesRole {
		return fmt.Errorf("%w: only admins can change roles", ErrForbidden)
	}
	return nil
}

// CanDeleteUser reports whether actor may delete users.
func CanDeleteUser(actor *Identity) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete users", ErrForbidden)
	}
	return nil
}

// CanAssignRole reports whether actor may create or promote a user with role.
// actor is nil for anonymous sign-up.
func CanAssignRole(actor *Identity, role string) error {
	if role == model.RoleAdmin && !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can create admin accounts", ErrForbidden)
	}
	return nil
}

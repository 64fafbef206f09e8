package service

import (
	"context"
	"errors"
	"strings"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

var errBadCredentials = &Error{Kind: KindUnauthenticated, Message: "invalid email or password"}

// Users manages accounts and credentials.
type Users struct {
	s *Service
}

func validUserRole(role string) bool {
	return role == model.RoleMember || role == model.RoleAdmin
}

// Create registers a user. actor is nil for anonymous sign-up.
func (u *Users) Create(ctx context.Context, actor *auth.Identity, in model.CreateUserInput) (*model.User, error) {
	username, err := requireText("username", in.Username)
	if err != nil {
		return nil, err
	}
	email, err := requireText("email", in.Email)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, invalid("password", "'password' must not be empty")
	}
	role := in.Role
	if role == "" {
		role = model.RoleMember
	}
	if !validUserRole(role) {
		return nil, invalid("role", "'role' must be one of: member, admin")
	}
	if err := auth.CanAssignRole(actor, role); err != nil {
		return nil, forbidden(err)
	}

	hash, err := u.s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    u.s.clock(),
	}

	err = u.s.tx(ctx, func(tx store.Tx) error {
		if err := checkUserUnique(ctx, tx, user); err != nil {
			return err
		}
		return storeErr(tx.CreateUser(ctx, user), "user")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func checkUserUnique(ctx context.Context, tx store.Tx, user *model.User) error {
	if other, err := tx.GetUserByUsername(ctx, user.Username); err == nil && other.ID != user.ID {
		return conflict("username", "username %q is already taken", user.Username)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if other, err := tx.GetUserByEmail(ctx, user.Email); err == nil && other.ID != user.ID {
		return conflict("email", "email %q is already registered", user.Email)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Get returns a single user.
func (u *Users) Get(ctx context.Context, rawID string) (*model.User, error) {
	id, err := parseID(rawID, "user")
	if err != nil {
		return nil, err
	}
	var user *model.User
	err = u.s.tx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id)
		return storeErr(err, "user")
	})
	return user, err
}

// List returns every user.
func (u *Users) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := u.s.tx(ctx, func(tx store.Tx) error {
		var err error
		users, err = tx.ListUsers(ctx)
		return err
	})
	return users, err
}

// Update applies a partial update subject to the update policy.
func (u *Users) Update(ctx context.Context, actor *auth.Identity, rawID string, in model.UpdateUserInput) (*model.User, error) {
	id, err := parseID(rawID, "user")
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		requireSet("username", in.Username),
		requireSet("email", in.Email),
		requireSet("password", in.Password),
		requireSet("role", in.Role),
	); err != nil {
		return nil, err
	}

	var hash string
	if in.Password.Set {
		if *in.Password.Value == "" {
			return nil, invalid("password", "'password' must not be empty")
		}
		if hash, err = u.s.hasher.Hash(*in.Password.Value); err != nil {
			return nil, err
		}
	}

	var user *model.User
	err = u.s.tx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id)
		if err != nil {
			return storeErr(err, "user")
		}

		changesRole := in.Role.Set && *in.Role.Value != user.Role
		if err := auth.CanUpdateUser(actor, id, changesRole); err != nil {
			return forbidden(err)
		}

		if in.Username.Set {
			if user.Username, err = requireText("username", *in.Username.Value); err != nil {
				return err
			}
		}
		if in.Email.Set {
			email, err := requireText("email", *in.Email.Value)
			if err != nil {
				return err
			}
			user.Email = strings.ToLower(email)
		}
		if in.Role.Set {
			if !validUserRole(*in.Role.Value) {
				return invalid("role", "'role' must be one of: member, admin")
			}
			user.Role = *in.Role.Value
		}
		if hash != "" {
			user.PasswordHash = hash
		}

		if err := checkUserUnique(ctx, tx, user); err != nil {
			return err
		}
		return storeErr(tx.UpdateUser(ctx, user), "user")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Only admins may delete. Teams led by the user lose
// their lead and tasks referencing the user keep existing with the reference
// cleared.
func (u *Users) Delete(ctx context.Context, actor *auth.Identity, rawID string) (*model.User, error) {
	if err := auth.CanDeleteUser(actor); err != nil {
		return nil, forbidden(err)
	}
	id, err := parseID(rawID, "user")
	if err != nil {
		return nil, err
	}
	var user *model.User
	err = u.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if user, err = tx.GetUser(ctx, id); err != nil {
			return storeErr(err, "user")
		}
		return storeErr(tx.DeleteUser(ctx, id), "user")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and stamps the last login time.
func (u *Users) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errBadCredentials
	}

	var user *model.User
	err := u.s.tx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUserByEmail(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			return errBadCredentials
		}
		if err != nil {
			return err
		}
		if u.s.hasher.Compare(user.PasswordHash, password) != nil {
			return errBadCredentials
		}
		now := u.s.clock()
		user.LastLogin = &now
		return storeErr(tx.UpdateUser(ctx, user), "user")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// LookupIdentity implements auth.IdentityLookup.
func (u *Users) LookupIdentity(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	var user *model.User
	err := u.s.tx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, id)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrUnknownSubject
	}
	if err != nil {
		return nil, err
	}
	return &auth.Identity{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

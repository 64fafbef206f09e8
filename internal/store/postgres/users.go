package postgres

import (
	"context"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, role, created_at, last_login`

func scanUser(scan func(dest ...any) error) (*model.User, error) {
	u := &model.User{}
	if err := scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.LastLogin); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new user row.
func (x *tx) CreateUser(ctx context.Context, u *model.User) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.LastLogin,
	)
	return mapErr("creating user", err)
}

// GetUser retrieves a user by primary key.
func (x *tx) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(x.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, mapErr("getting user by id", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email address.
func (x *tx) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(x.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email).Scan)
	if err != nil {
		return nil, mapErr("getting user by email", err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
func (x *tx) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(x.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username).Scan)
	if err != nil {
		return nil, mapErr("getting user by username", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (x *tx) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := x.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, mapErr("listing users", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, mapErr("scanning user row", err)
		}
		users = append(users, u)
	}
	return users, mapErr("listing users", rows.Err())
}

// UpdateUser writes every mutable column of u.
func (x *tx) UpdateUser(ctx context.Context, u *model.User) error {
	return x.execOne(ctx, "updating user",
		`UPDATE users SET username = $2, email = $3, password_hash = $4, role = $5, last_login = $6
		 WHERE id = $1`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.LastLogin,
	)
}

// DeleteUser removes a user; foreign keys null out or cascade per the schema.
func (x *tx) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return x.execOne(ctx, "deleting user", `DELETE FROM users WHERE id = $1`, id)
}

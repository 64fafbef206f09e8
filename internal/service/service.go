// Package service holds the business rules of the task board. Every exported
// operation runs inside exactly one store transaction and reports expected
// failures as *Error.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher is the default Hasher.
type BcryptHasher struct {
	Cost int
}

// Hash implements Hasher.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// Compare implements Hasher.
func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Options configures a Service.
type Options struct {
	Hasher Hasher
	// AllowedRoles restricts membership roles. Empty means any non-empty role.
	// The leader and member roles are always accepted, since reassigning a
	// team lead promotes to one and demotes to the other.
	AllowedRoles []string
}

// Service bundles the per-entity services over a shared store.
type Service struct {
	store        store.Store
	hasher       Hasher
	allowedRoles map[string]bool
	now          func() time.Time

	Users       *Users
	Teams       *Teams
	Memberships *Memberships
	Categories  *Categories
	Projects    *Projects
	Tasks       *Tasks
}

// New creates a Service over st.
func New(st store.Store, opts Options) *Service {
	s := &Service{
		store:  st,
		hasher: opts.Hasher,
		now:    time.Now,
	}
	if s.hasher == nil {
		s.hasher = BcryptHasher{}
	}
	if len(opts.AllowedRoles) > 0 {
		s.allowedRoles = map[string]bool{
			model.MembershipLeader: true,
			model.MembershipMember: true,
		}
		for _, r := range opts.AllowedRoles {
			s.allowedRoles[strings.TrimSpace(r)] = true
		}
	}

	s.Users = &Users{s: s}
	s.Teams = &Teams{s: s}
	s.Memberships = &Memberships{s: s}
	s.Categories = &Categories{s: s}
	s.Projects = &Projects{s: s}
	s.Tasks = &Tasks{s: s}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) tx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.store.WithTx(ctx, fn)
}

// parseID parses a path id. A malformed id cannot name an existing row, so
// it is reported as not found.
func parseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, notFound(entity)
	}
	return id, nil
}

// parseFilterID parses an optional query filter. Unlike path ids a malformed
// filter is a client error.
func parseFilterID(raw, field string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalid(field, "'%s' must be a valid uuid", field)
	}
	return &id, nil
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid(field, "'%s' must not be empty", field)
	}
	return v, nil
}

// requireSet rejects an explicit null for a non-nullable field.
func requireSet[T any](field string, o model.Optional[T]) error {
	if o.IsNull() {
		return invalid(field, "'%s' must not be null", field)
	}
	return nil
}

func (s *Service) checkRole(role string) error {
	if strings.TrimSpace(role) == "" {
		return invalid("role", "'role' must not be empty")
	}
	if s.allowedRoles != nil && !s.allowedRoles[role] {
		return invalid("role", "role %q is not allowed", role)
	}
	return nil
}

// Reference checks used by create and update.

func requireUser(ctx context.Context, tx store.Tx, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := tx.GetUser(ctx, *id)
	return storeErr(err, "user")
}

func requireTeam(ctx context.Context, tx store.Tx, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := tx.GetTeam(ctx, *id)
	return storeErr(err, "team")
}

func requireCategory(ctx context.Context, tx store.Tx, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := tx.GetCategory(ctx, *id)
	return storeErr(err, "category")
}

func requireProject(ctx context.Context, tx store.Tx, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := tx.GetProject(ctx, *id)
	return storeErr(err, "project")
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

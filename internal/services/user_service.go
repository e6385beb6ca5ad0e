package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// UserStore is the persistence needed by UserService.
type UserStore interface {
	RegisterUser(ctx context.Context, username, passwordHash string, budget core.Money) (core.User, error)
	FindUsersByUsername(ctx context.Context, username string) ([]storage.UserRecord, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
}

// UserService handles registration and login.
type UserService struct {
	store UserStore
	cost  int
}

func NewUserService(store UserStore, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, cost: bcryptCost}
}

// Register validates the form values, hashes the password and stores a new
// user. An existing user with the same name does not prevent registration.
func (s *UserService) Register(ctx context.Context, username, password string, budget core.Money) (core.User, error) {
	username = strings.TrimSpace(username)
	if err := core.ValidateRegistration(username, password, budget); err != nil {
		return core.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.RegisterUser(ctx, username, string(hash), budget)
	if err != nil {
		return core.User{}, fmt.Errorf("register user: %w", err)
	}
	return u, nil
}

// Login returns the oldest user with this username whose password matches,
// or nil when no row matches. A nil user with a nil error means bad
// credentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil
	}

	recs, err := s.store.FindUsersByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	for _, rec := range recs {
		err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password))
		if err == nil {
			u := rec.User
			return &u, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.WarnContext(ctx, "Unreadable password hash", "user_id", rec.User.ID, "error", err)
		}
	}
	return nil, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (core.User, error) {
	return s.store.GetUser(ctx, id)
}

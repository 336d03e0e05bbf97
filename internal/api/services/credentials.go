package services

import (
	"context"
	"errors"

	"github.com/rohits-web03/stashbox/internal/models"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUsernameLen = 20
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

// Credentials creates accounts and verifies passwords. Passwords are only
// ever held as bcrypt hashes.
type Credentials struct {
	users     *repositories.UserRepository
	cost      int
	dummyHash []byte
	log       *zap.Logger
}

func NewCredentials(users *repositories.UserRepository, cost int, log *zap.Logger) (*Credentials, error) {
	// Unknown usernames are checked against this hash so that lookups for
	// missing and existing users cost the same.
	dummy, err := bcrypt.GenerateFromPassword([]byte("stashbox-dummy-password"), cost)
	if err != nil {
		return nil, err
	}
	return &Credentials{users: users, cost: cost, dummyHash: dummy, log: log}, nil
}

// Create registers a new user.
func (c *Credentials) Create(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, newError(ErrInvalidInput, "Missing username or password", nil)
	}
	if len(username) > MaxUsernameLen {
		return nil, newError(ErrInvalidInput, "Username must be at most 20 characters", nil)
	}
	if len(password) > maxPasswordLen {
		return nil, newError(ErrInvalidInput, "Password must be at most 72 bytes", nil)
	}

	exists, err := c.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, newError(ErrStorageFailure, "Database query failed", err)
	}
	if exists {
		return nil, newError(ErrAlreadyExists, "Username already exists", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return nil, newError(ErrStorageFailure, "Failed to hash password", err)
	}

	u := &models.User{Username: username, Password: string(hashed)}
	if err := c.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrAlreadyExists, "Username already exists", err)
		}
		return nil, newError(ErrStorageFailure, "Database insert failed", err)
	}

	c.log.Info("user registered", zap.String("username", username), zap.String("userId", u.ID.String()))
	return u, nil
}

// Verify returns the user when password matches the stored hash.
func (c *Credentials) Verify(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, newError(ErrInvalidCredentials, "Invalid username or password", nil)
	}

	u, err := c.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
		return nil, newError(ErrInvalidCredentials, "Invalid username or password", nil)
	case err != nil:
		return nil, newError(ErrStorageFailure, "Database error", err)
	}

	// Accounts created through Google sign-in have no password.
	hash := []byte(u.Password)
	if len(hash) == 0 {
		hash = c.dummyHash
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || u.Password == "" {
		return nil, newError(ErrInvalidCredentials, "Invalid username or password", err)
	}
	return u, nil
}

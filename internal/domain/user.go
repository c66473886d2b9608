package domain

import (
	"context"
	"errors"
	"slices"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Role codes.
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
)

// User represents a registered organizer account
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, lastName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		LastName:  lastName,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Claims is the verified content of a session token.
type Claims struct {
	UserID    string
	Email     string
	Roles     []string
	SessionID string
	ExpiresAt time.Time
}

// HasRole reports whether the token carries the role code.
func (c *Claims) HasRole(code string) bool {
	return c != nil && slices.Contains(c.Roles, code)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, sessionID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// SessionCache is the process-wide store of live sessions. A session absent from the cache is logged out.
type SessionCache interface {
	Store(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Lookup returns the user ID for the session, or ErrNotFound.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Invalidate(ctx context.Context, sessionID string) error
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
}

// LoginCodeRepository defines the interface for one-time login code storage.
type LoginCodeRepository interface {
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Consume(ctx context.Context, email, codeHash string) (consumed bool, err error)
}

// RoleRepository stores role grants by role code.
type RoleRepository interface {
	// Grant is idempotent. It returns ErrNotFound when no role has the code.
	Grant(ctx context.Context, userID, code string) error
	CodesForUser(ctx context.Context, userID string) ([]string, error)
}

// LoginResult is returned by a successful code verification.
// swagger:model LoginResult
type LoginResult struct {
	Token          string `json:"token"`
	User           *User  `json:"user"`
	NewAccount     bool   `json:"new_account"`
	ClaimedCredits int    `json:"claimed_credits"`
}

// UserService defines the business logic for user profile and authentication.
type UserService interface {
	RequestLoginCode(ctx context.Context, email string) error
	VerifyLoginCode(ctx context.Context, email, code string) (*LoginResult, error)
	Logout(ctx context.Context, claims *Claims) error
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	ClaimPendingCredits(ctx context.Context, userID string) (claimed int, balance int, err error)
}

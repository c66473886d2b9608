package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestbook/internal/domain"
)

const (
	defaultRole         = domain.RoleOrganizer
	loginCodeDigits     = 6
	loginCodeExpiryMins = 15
	maxProfileNameLen   = 100
)

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	loginCodeRegex = regexp.MustCompile(`^\d{6}$`)

	errInvalidCode = fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
)

type userService struct {
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	loginCodeRepo  domain.LoginCodeRepository
	ledger         domain.CreditLedger
	tokenIssuer    domain.TokenIssuer
	sessions       domain.SessionCache
	tokenExpiry    time.Duration
	jobs           domain.JobQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(userRepo domain.UserRepository, roleRepo domain.RoleRepository, loginCodeRepo domain.LoginCodeRepository, ledger domain.CreditLedger, tokenIssuer domain.TokenIssuer, sessions domain.SessionCache, tokenExpiry time.Duration, jobs domain.JobQueue, logger *slog.Logger, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		loginCodeRepo:  loginCodeRepo,
		ledger:         ledger,
		tokenIssuer:    tokenIssuer,
		sessions:       sessions,
		tokenExpiry:    tokenExpiry,
		jobs:           jobs,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) RequestLoginCode(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return domain.NewFieldError("email", "invalid email format")
	}
	code, err := generateLoginCode(loginCodeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	codeHash := hashLoginCode(code)
	expiresAt := time.Now().Add(loginCodeExpiryMins * time.Minute)
	if err := s.loginCodeRepo.Create(ctx, email, codeHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store login code: %w", err)
	}
	data := &domain.LoginCodeEmailData{
		Email:            email,
		Code:             code,
		ExpiresInMinutes: loginCodeExpiryMins,
	}
	if err := s.jobs.EnqueueLoginCode(ctx, data); err != nil {
		return fmt.Errorf("failed to queue login code email: %w", err)
	}
	return nil
}

// VerifyLoginCode consumes the code, creates the account on first login and opens a session.
// Unclaimed purchased credits for the email are moved onto the balance.
func (s *userService) VerifyLoginCode(ctx context.Context, email, code string) (*domain.LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, domain.NewFieldError("email", "invalid email format")
	}
	code = strings.TrimSpace(code)
	if !loginCodeRegex.MatchString(code) {
		return nil, errInvalidCode
	}
	consumed, err := s.loginCodeRepo.Consume(ctx, email, hashLoginCode(code))
	if err != nil {
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if !consumed {
		return nil, errInvalidCode
	}

	newAccount := false
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		user, err = s.createAccount(ctx, email)
		if err != nil {
			return nil, err
		}
		newAccount = true
	}

	claimed, balance, err := s.ledger.ClaimPending(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending credits: %w", err)
	}
	user.Credits = balance

	roleCodes, err := s.roleRepo.CodesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	sessionID := uuid.NewString()
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, roleCodes, sessionID, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.sessions.Store(ctx, sessionID, user.ID, s.tokenExpiry); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if newAccount {
		welcome := &domain.WelcomeMessageEmailData{Email: user.Email, FirstName: user.Name, ClaimedCredits: claimed}
		if err := s.jobs.EnqueueWelcome(context.WithoutCancel(ctx), welcome); err != nil {
			s.logger.WarnContext(ctx, "enqueue welcome email failed", "user_id", user.ID, "err", err)
		}
	}

	return &domain.LoginResult{
		Token:          token,
		User:           user,
		NewAccount:     newAccount,
		ClaimedCredits: claimed,
	}, nil
}

func (s *userService) createAccount(ctx context.Context, email string) (*domain.User, error) {
	now := time.Now()
	user := domain.NewUser(email, "", "", now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.roleRepo.Grant(ctx, user.ID, defaultRole); err != nil {
		return nil, fmt.Errorf("failed to grant role %q: %w", defaultRole, err)
	}
	return user, nil
}

func generateLoginCode(digits int) (string, error) {
	const digitspace = "0123456789"
	b := make([]byte, digits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = digitspace[int(b[i])%len(digitspace)]
	}
	return string(b), nil
}

func hashLoginCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Logout removes the session from the cache so the token stops working before it expires.
func (s *userService) Logout(ctx context.Context, claims *domain.Claims) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if claims == nil || claims.SessionID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.sessions.Invalidate(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user.Name = strings.TrimSpace(user.Name)
	user.LastName = strings.TrimSpace(user.LastName)
	user.Email = normalizeEmail(user.Email)
	if len(user.Name) > maxProfileNameLen {
		return domain.NewFieldError("name", "must be at most %d characters", maxProfileNameLen)
	}
	if len(user.LastName) > maxProfileNameLen {
		return domain.NewFieldError("last_name", "must be at most %d characters", maxProfileNameLen)
	}
	if user.Email != "" && !emailRegexp.MatchString(user.Email) {
		return domain.NewFieldError("email", "invalid email format")
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return err
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *userService) ClaimPendingCredits(ctx context.Context, userID string) (int, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, 0, domain.ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("failed to get user: %w", err)
	}
	claimed, balance, err := s.ledger.ClaimPending(ctx, user.ID, user.Email)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to claim pending credits: %w", err)
	}
	return claimed, balance, nil
}

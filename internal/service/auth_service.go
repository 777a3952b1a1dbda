package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/biv3k224/ecommerce/internal/domain"
	"github.com/biv3k224/ecommerce/internal/security/auth"
)

// DefaultRole is assigned to users registered without an explicit role.
const DefaultRole = "admin"

// AuthService owns the credential store and the token lifecycle.
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo domain.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// UserInput carries the fields of a user create or update request. On
// update, an empty Password means "keep the existing hash unchanged".
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResult is returned on a successful login.
type AuthResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

// Register creates a new user account. The raw password is hashed with
// bcrypt before it ever reaches the store; no auto-login is performed.
func (s *AuthService) Register(ctx context.Context, input UserInput) (*domain.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	// Fast-path duplicate checks; the unique constraints remain the
	// authoritative guard against concurrent registrations.
	if taken, err := s.userRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrDuplicateUsername
	}
	if taken, err := s.userRepo.ExistsByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	role := input.Role
	if role == "" {
		role = DefaultRole
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate validates the credentials and issues a bearer token.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Info("login attempt with unknown username", slog.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("failed to load user for login",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Username, user.Role)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("username", username))

	return &AuthResult{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: time.Now().Add(s.tokens.Expiry()),
		Message:   "Login successful",
	}, nil
}

// ValidateCredentials compares the raw password against the stored bcrypt
// hash. Unknown usernames yield false, never an error.
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) bool {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// GenerateToken issues a token for the username without any credential
// check. Used internally and by tests.
func (s *AuthService) GenerateToken(username string) (string, error) {
	return s.tokens.Generate(username, "")
}

// ValidateToken reports whether the token verifies. Malformed, expired or
// badly signed tokens all yield false; nothing is ever raised, since an
// invalid token is an expected case rather than an exceptional one.
func (s *AuthService) ValidateToken(token string) bool {
	_, err := s.tokens.Validate(token)
	return err == nil
}

// UsernameFromToken extracts the subject claim from a verified token.
// The second return is false for any token that fails verification.
func (s *AuthService) UsernameFromToken(token string) (string, bool) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateUser applies a full-field update. Username/email uniqueness is
// rechecked only when the value actually changed; the password is
// re-hashed only when a non-empty new password is supplied.
func (s *AuthService) UpdateUser(ctx context.Context, id string, input UserInput) (*domain.User, error) {
	existing, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", domain.ErrValidation)
	}

	if input.Username != existing.Username {
		if taken, err := s.userRepo.ExistsByUsername(ctx, input.Username); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.ErrDuplicateUsername
		}
	}
	if input.Email != existing.Email {
		if taken, err := s.userRepo.ExistsByEmail(ctx, input.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.ErrDuplicateEmail
		}
	}

	existing.Username = input.Username
	existing.Email = input.Email
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = string(hash)
	}
	if input.Role != "" {
		existing.Role = input.Role
	}

	if err := s.userRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.String("user_id", id))
	return existing, nil
}

// DeleteUser removes a user by ID
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/biv3k224/ecommerce/internal/domain"
	"github.com/biv3k224/ecommerce/internal/security/auth"
)

type memoryUserRepo struct {
	users map[string]domain.User
}

var _ domain.UserRepository = (*memoryUserRepo)(nil)

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (m *memoryUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memoryUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = *u
	return nil
}

func (m *memoryUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) List(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range m.users {
		cp := u
		out = append(out, &cp)
	}
	return out, nil
}

func newTestAuthService(repo *memoryUserRepo) *AuthService {
	tokens := auth.NewTokenManager("test-secret-at-least-32-characters!!", "storeinventory-test", time.Hour)
	return NewAuthService(repo, tokens, nil)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != DefaultRole {
		t.Fatalf("expected default role %q, got %q", DefaultRole, user.Role)
	}
	if user.PasswordHash == "s3cretpass" {
		t.Fatalf("password stored in plaintext")
	}

	result, err := svc.Authenticate(context.Background(), "alice", "s3cretpass")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
	if result.Username != "alice" {
		t.Fatalf("unexpected username %q", result.Username)
	}
	if !svc.ValidateToken(result.Token) {
		t.Fatalf("freshly issued token failed validation")
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	if _, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	if _, err := svc.Authenticate(context.Background(), "ghost", "whatever"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// failingUserRepo simulates a credential store whose backend is down.
type failingUserRepo struct {
	*memoryUserRepo
	err error
}

func (f *failingUserRepo) GetByUsername(_ context.Context, _ string) (*domain.User, error) {
	return nil, f.err
}

func TestAuthenticateStoreFailureIsNotBadCredentials(t *testing.T) {
	storeErr := errors.New("connection refused")
	repo := &failingUserRepo{memoryUserRepo: newMemoryUserRepo(), err: storeErr}
	svc := NewAuthService(repo, auth.NewTokenManager("test-secret-at-least-32-characters!!", "storeinventory-test", time.Hour), nil)

	_, err := svc.Authenticate(context.Background(), "alice", "s3cretpass")
	if err == nil {
		t.Fatalf("expected an error when the store is down")
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("store failure reported as invalid credentials: %v", err)
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("store error not propagated: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	if _, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cretpass",
	}); !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	if _, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Register(context.Background(), UserInput{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	}); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	cases := []struct {
		name  string
		input UserInput
	}{
		{"empty username", UserInput{Email: "a@example.com", Password: "s3cretpass"}},
		{"empty email", UserInput{Username: "alice", Password: "s3cretpass"}},
		{"short password", UserInput{Username: "alice", Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.input); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepo())

	if svc.ValidateToken("") {
		t.Fatalf("empty token validated")
	}
	if svc.ValidateToken("not.a.token") {
		t.Fatalf("garbage token validated")
	}
}

func TestUpdateUserPasswordOnlyWhenProvided(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	originalHash := user.PasswordHash

	updated, err := svc.UpdateUser(context.Background(), user.ID, UserInput{
		Username: "alice",
		Email:    "alice@new.example.com",
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.PasswordHash != originalHash {
		t.Fatalf("password hash changed without a new password")
	}
	if updated.Email != "alice@new.example.com" {
		t.Fatalf("email not updated: %q", updated.Email)
	}

	// Old password still works after the email change.
	if _, err := svc.Authenticate(context.Background(), "alice", "s3cretpass"); err != nil {
		t.Fatalf("Authenticate after update: %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), UserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cretpass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/plantpal/plantpal-api/internal/core/domain"
	"github.com/plantpal/plantpal-api/internal/core/ports"
)

// AuthService implements registration, login and session resolution.
type AuthService struct {
	repo   ports.CredentialRepository
	tokens *TokenCodec
	log    zerolog.Logger
}

func NewAuthService(repo ports.CredentialRepository, tokens *TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

// Register creates an account. The first account ever created becomes ADMIN.
// The count-then-insert is not atomic; two concurrent first registrations can
// both observe an empty store.
func (s *AuthService) Register(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateUsername
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: count users: %w", err)
	}
	role := domain.RoleUser
	if total == 0 {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.ID, created.Role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return &ports.AuthResult{Token: token, Role: created.Role, Username: created.Username}, nil
}

// Login checks the credentials and issues a fresh token. Unknown users and
// wrong passwords are reported identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.AuthResult{Token: token, Role: user.Role, Username: user.Username}, nil
}

// ResolveSession extracts the token from an Authorization header of the form
// "Bearer <token>" or a bare "<token>". Any failure degrades to anonymous.
func (s *AuthService) ResolveSession(_ context.Context, authHeader string) *domain.Session {
	token := bearerToken(authHeader)
	if token == "" {
		return nil
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		ev := s.log.Debug().Err(err)
		if isExpired(err) {
			ev = ev.Bool("expired", true)
		}
		ev.Msg("token rejected, continuing anonymously")
		return nil
	}

	return &domain.Session{
		UserID:    claims.UserID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found {
		return header
	}
	if !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}

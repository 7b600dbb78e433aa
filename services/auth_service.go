package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SaranyaKannan28/summer-internship/auth"
	"github.com/SaranyaKannan28/summer-internship/database"
	"github.com/SaranyaKannan28/summer-internship/metrics"
	"github.com/SaranyaKannan28/summer-internship/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid credentials"

// UserRepository is the credential store used by AuthService.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// RegisterInput is a signup request. Role defaults to employee.
type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string
	Role  models.Role
	User  *models.User
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users   UserRepository
	tokens  *auth.TokenService
	cost    int
	log     zerolog.Logger
	metrics *metrics.Metrics

	// compared against when the email is unknown so both failure paths
	// spend the same time in bcrypt
	dummyHash []byte
}

func NewAuthService(users UserRepository, tokens *auth.TokenService, cost int, log zerolog.Logger, m *metrics.Metrics) *AuthService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		// cost out of range; fall back so construction never fails
		dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		cost:      cost,
		log:       log.With().Str("component", "auth").Logger(),
		metrics:   m,
		dummyHash: dummy,
	}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	defer func() { s.metrics.AuthAttempt("signup", err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, newError(ErrValidation, "All fields required")
	}
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if !in.Role.Valid() {
		return nil, newError(ErrValidation, "Invalid role: must be admin or employee")
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, newError(ErrConflict, "Email already registered")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, internal("Signup failed", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, internal("Signup failed", err)
	}

	user = &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, database.ErrDuplicate) {
			return nil, newError(ErrConflict, "Email already registered")
		}
		return nil, internal("Signup failed", err)
	}

	s.log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Login verifies the credentials and issues a token. When role is not empty
// the user must hold that role.
func (s *AuthService) Login(ctx context.Context, email, password string, role models.Role) (res *LoginResult, err error) {
	defer func() { s.metrics.AuthAttempt("login", err) }()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, newError(ErrAuthentication, msgInvalidCredentials)
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, newError(ErrAuthentication, msgInvalidCredentials)
	case err != nil:
		return nil, internal("Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(ErrAuthentication, msgInvalidCredentials)
	}

	if role != "" && role != user.Role {
		return nil, newError(ErrAuthorization, "user is not a %s", role)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, internal("Login failed", err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("user logged in")
	return &LoginResult{Token: token, Role: user.Role, User: user}, nil
}

// Authenticate verifies a bearer token.
func (s *AuthService) Authenticate(raw string) (*auth.Claims, error) {
	if raw == "" {
		return nil, newError(ErrAuthentication, "No token provided")
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, newError(ErrAuthentication, "Invalid token")
	}
	return claims, nil
}

// Profile loads the user behind an authenticated request.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, internal("Failed to load profile", err)
	}
	return user, nil
}

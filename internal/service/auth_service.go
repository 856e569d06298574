package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/auth"
	"travel-review-service/internal/model"
	"travel-review-service/internal/repository"
)

const msgInvalidCredentials = "Invalid credentials"

// SignupInput is what a new user submits.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Phone    string
}

// Session is returned after signup or login.
type Session struct {
	Token string
	Name  string
}

// AuthService registers users, checks credentials and issues tokens.
type AuthService struct {
	users  repository.UserRepository
	tokens auth.TokenIssuer
	cost   int
}

func NewAuthService(users repository.UserRepository, tokens auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Signup stores a new user with a bcrypt hash and returns a session.
// A taken email is a Conflict and no second record is written.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return Session{}, apperror.InvalidInput("Missing required fields")
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return Session{}, apperror.Conflict("Email already registered")
	case !errors.Is(err, apperror.ErrNotFound):
		return Session{}, fmt.Errorf("AuthService.Signup: lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Session{}, apperror.Internal("hash password", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Address:      in.Address,
		Phone:        in.Phone,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return Session{}, fmt.Errorf("AuthService.Signup: insert: %w", err)
	}

	return s.session(user)
}

// Login verifies credentials. Unknown email and wrong password produce the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperror.InvalidInput("Missing email or password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return Session{}, apperror.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("AuthService.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, apperror.Unauthorized(msgInvalidCredentials)
	}
	return s.session(user)
}

// Profile loads the user behind an authenticated email.
func (s *AuthService) Profile(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) session(user *model.User) (Session, error) {
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return Session{}, apperror.Internal("issue token", err)
	}
	return Session{Token: token, Name: user.Name}, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/config"
	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs
	maxPasswordLength = 72
)

type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Img      string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService issues and verifies HS256 bearer tokens whose subject is the
// user's hex id.
type AuthService struct {
	users      repository.UserRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	log        *slog.Logger
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, cfg config.AuthConfig, log *slog.Logger) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.TokenTTL,
		bcryptCost: cost,
		log:        log,
		now:        time.Now,
	}
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSignUp)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidSignUp)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignUp, minPasswordLength)
	}
	if len(in.Password) > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidSignUp, maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Img:      in.Img,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "user signed up", slog.String("user_id", user.ID.Hex()))
	return s.result(user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.result(user)
}

// Verify returns the user id carried by a valid token.
func (s *AuthService) Verify(token string) (primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

func (s *AuthService) issue(userID primitive.ObjectID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID.Hex(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) result(user *domain.User) (*AuthResult, error) {
	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

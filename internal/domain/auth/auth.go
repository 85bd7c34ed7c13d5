// Package auth authenticates staff and admin users and issues the
// bearer tokens the HTTP layer checks on protected routes.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/buanay/pos/internal/domain/order"
)

var (
	// ErrInvalidCredentials is returned when the username or password does
	// not match. Unknown usernames map here too, so callers cannot probe
	// for accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for malformed, expired, or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Role grants a fixed capability set.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Actor translates the role into order lifecycle capabilities. Admins
// hold every staff capability plus administrative ones.
func (r Role) Actor() order.Actor {
	switch r {
	case RoleAdmin:
		return order.Actor{Staff: true, Admin: true}
	case RoleStaff:
		return order.Actor{Staff: true}
	default:
		return order.Actor{}
	}
}

// User is a stored account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
}

// Repository provides user lookup by username.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Claims is the token payload: the registered set plus the role.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies HMAC-signed bearer tokens.
type Service struct {
	users  Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a token service. ttl bounds token lifetime.
func NewService(users Repository, secret []byte, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login checks the credentials and returns a signed token for the user.
// Any lookup or password mismatch yields ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "signing token")
	}
	return token, u, nil
}

// Verify parses and validates a bearer token, returning its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword produces a bcrypt hash suitable for User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

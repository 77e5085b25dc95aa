package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"coanime/internal/config"
	"coanime/internal/middleware/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AdminScopes are granted to the configured admin account.
var AdminScopes = []string{"read:titles", "write:titles", "delete:titles", "run:sync"}

const RoleAdmin = "admin"

// Claims is the JWT payload issued by the admin login.
type Claims struct {
	Scopes []string `json:"scopes"`
	Role   string   `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(username, password string) (accessToken string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	adminUsername     string
	adminPasswordHash string
	jwtSecret         []byte
	accessTokenTTL    time.Duration
	now               func() time.Time
}

func NewAuthService(cfg *config.Config) AuthService {
	return &authService{
		adminUsername:     cfg.AdminUsername,
		adminPasswordHash: cfg.AdminPasswordHash,
		jwtSecret:         []byte(cfg.JWTSecret),
		accessTokenTTL:    cfg.AccessTokenTTL,
		now:               time.Now,
	}
}

// Login: authenticates the admin and returns a signed access token.
func (s *authService) Login(username, password string) (string, time.Time, error) {
	if username != s.adminUsername || s.adminPasswordHash == "" {
		auth.BurnCompare(password)
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(s.adminPasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.accessTokenTTL)
	claims := Claims{
		Scopes: AdminScopes,
		Role:   RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/argon2"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/config"
)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods and never inspect credentials themselves.
type AuthService interface {
	Login(input LoginInput) (token string, user *User, err error)
	Verify(token string) (*Claims, error)
}

// authService validates the configured admin credentials and issues
// HS256-signed bearer tokens.
type authService struct {
	username     string
	password     string
	passwordHash string
	secret       []byte
	tokenTTL     time.Duration
}

// NewAuthService creates an auth service from the admin credential config.
func NewAuthService(cfg config.AuthConfig) AuthService {
	return &authService{
		username:     cfg.AdminUsername,
		password:     cfg.AdminPassword,
		passwordHash: cfg.AdminPasswordHash,
		secret:       []byte(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
	}
}

// Login checks the credentials against the configured admin identity and
// returns a fresh bearer token on success. Username and password failures
// share one message so the response never reveals which was wrong.
func (s *authService) Login(input LoginInput) (string, *User, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.username)) == 1
	passwordOK := s.verifyPassword(input.Password)
	if !usernameOK || !passwordOK {
		slog.Warn("admin login rejected", slog.String("username", input.Username))
		return "", nil, apperror.NewUnauthorized("invalid username or password")
	}

	now := time.Now().UTC()
	claims := Claims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   s.username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("signing token: %w", err))
	}

	slog.Info("admin logged in", slog.String("username", s.username))
	return token, &User{Username: s.username, Role: roleAdmin}, nil
}

// Verify parses and validates a bearer token, returning its claims.
func (s *authService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	if claims.Role != roleAdmin {
		return nil, apperror.NewForbidden("admin access required")
	}
	return claims, nil
}

// verifyPassword checks the submitted password against the configured
// argon2id hash, falling back to a constant-time plaintext compare when
// only ADMIN_PASSWORD is set (development).
func (s *authService) verifyPassword(password string) bool {
	if s.passwordHash != "" {
		return verifyArgon2id(password, s.passwordHash)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

// verifyArgon2id checks a plaintext password against a PHC-format
// argon2id hash string: $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash>.
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, computed) == 1
}

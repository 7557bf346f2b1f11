package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/padmasana/studio/internal/apperror"
	"github.com/padmasana/studio/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret-test-secret-test-secret!",
		TokenTTL:      time.Hour,
		AdminUsername: "admin",
		AdminPassword: "open-sesame",
	}
}

// encodeArgon2id produces a PHC hash string the way a deployment would
// generate one for ADMIN_PASSWORD_HASH.
func encodeArgon2id(t *testing.T, password string) string {
	t.Helper()
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("generating salt: %v", err)
	}
	hash := argon2.IDKey([]byte(password), salt, 3, 64*1024, 4, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 64*1024, 3, 4,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func assertAppError(t *testing.T, err error, wantCode int, wantType string) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an AppError", err)
	}
	if appErr.Code != wantCode || appErr.Type != wantType {
		t.Errorf("got %d/%s, want %d/%s", appErr.Code, appErr.Type, wantCode, wantType)
	}
}

func TestLoginAndVerifyRoundTrip(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	token, user, err := svc.Login(LoginInput{Username: "admin", Password: "open-sesame"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "admin" || user.Role != "admin" {
		t.Errorf("user = %+v", user)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"wrong password", LoginInput{Username: "admin", Password: "nope"}},
		{"wrong username", LoginInput{Username: "root", Password: "open-sesame"}},
		{"both wrong", LoginInput{Username: "root", Password: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(tt.input)
			assertAppError(t, err, 401, "unauthorized")
		})
	}
}

func TestLoginWithArgon2idHash(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AdminPasswordHash = encodeArgon2id(t, "hashed-secret")
	cfg.AdminPassword = "ignored-when-hash-set"
	svc := NewAuthService(cfg)

	if _, _, err := svc.Login(LoginInput{Username: "admin", Password: "hashed-secret"}); err != nil {
		t.Errorf("Login with hashed password: %v", err)
	}

	_, _, err := svc.Login(LoginInput{Username: "admin", Password: "ignored-when-hash-set"})
	assertAppError(t, err, 401, "unauthorized")
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = -time.Minute
	svc := NewAuthService(cfg)

	token, _, err := svc.Login(LoginInput{Username: "admin", Password: "open-sesame"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = svc.Verify(token)
	assertAppError(t, err, 401, "unauthorized")
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "another-secret-another-secret-another!"
	other := NewAuthService(otherCfg)

	token, _, err := other.Login(LoginInput{Username: "admin", Password: "open-sesame"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	_, err = svc.Verify(token)
	assertAppError(t, err, 401, "unauthorized")
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewAuthService(testAuthConfig())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(token); err == nil {
			t.Errorf("Verify(%q) accepted", token)
		}
	}
}

func TestVerifyArgon2idMalformedHash(t *testing.T) {
	for _, hash := range []string{
		"",
		"$argon2id$v=19$m=65536,t=3,p=4$short",
		"$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA",
	} {
		if verifyArgon2id("pw", hash) {
			t.Errorf("verifyArgon2id accepted malformed hash %q", hash)
		}
	}
}

// Package auth authenticates the single studio administrator. Login
// exchanges the configured credentials for a signed bearer token; the
// RequireAdmin middleware guards every mutating route with it.
package auth

import "github.com/golang-jwt/jwt/v5"

// Token claims. The site has exactly one admin identity, so tokens carry
// a role rather than a user ID.
const (
	tokenIssuer   = "padmasana-studio"
	tokenAudience = "padmasana-admin"
	roleAdmin     = "admin"
)

// LoginInput is the credentials payload for POST /api/auth/login.
type LoginInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// User is the authenticated identity echoed back to the client.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Claims is the JWT payload for an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

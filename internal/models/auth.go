package models

import "github.com/golang-jwt/jwt/v5"

// AdminLoginRequest holds the group-management password.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse returns the issued session token.
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// JWTClaims carries the admin session identity through request contexts.
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

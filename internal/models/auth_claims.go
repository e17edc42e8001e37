package models

import "github.com/golang-jwt/jwt/v5"

type JwtCustomClaims struct {
	UserID string `json:"userID"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

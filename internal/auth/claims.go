package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for the ops surface.
type Claims struct {
	jwt.RegisteredClaims

	OperatorID string `json:"operator_id"`
}

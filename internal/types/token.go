package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a bearer token issued by the identity service.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username,omitempty"`
}

// Actor is the authenticated caller of an operation. A nil *Actor is anonymous.
type Actor struct {
	UserID uuid.UUID
}

// NewActor returns an actor for userID.
func NewActor(userID uuid.UUID) *Actor {
	return &Actor{UserID: userID}
}

// IsAuthenticated is safe to call on a nil receiver.
func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.UserID != uuid.Nil
}

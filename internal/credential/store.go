// Package credential persists the access/refresh credential pair between runs.
//
// A Store holds exactly two values under fixed keys. Absence of either key means the
// user is logged out; Load reports that as ErrNotFound.
package credential

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
)

var ErrNotFound = errors.New("no stored credentials")

type Store interface {
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
	Clear(ctx context.Context) error
}

// NewToken builds the in-memory credential value. Expiry is read from the access
// token's exp claim when it is a JWT; otherwise it stays zero (never expires locally).
func NewToken(access, refresh string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       AccessExpiry(access),
	}
}

// AccessExpiry reads exp without verifying the signature; the server stays the
// authority on validity.
func AccessExpiry(access string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func complete(access, refresh string) bool {
	return access != "" && refresh != ""
}

// Package identity verifies signaling credentials.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const tokenLeeway = 30 * time.Second

// Directory resolves accounts issued by the user service.
type Directory interface {
	// ByAccountID returns the user behind the token subject.
	ByAccountID(ctx context.Context, accountID string) (*domain.User, error)
	Exists(ctx context.Context, uid domain.UID) (bool, error)
	Touch(ctx context.Context, uid domain.UID) error
}

var ErrUnknownAccount = errors.New("unknown account")

// Claims are the access token claims issued at login. userId names the
// account; uid and name are present on tokens that embed the identity.
type Claims struct {
	UserID any    `json:"userId,omitempty"`
	UID    string `json:"uid,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTGateway verifies HS256 access tokens. With a Directory the account is
// looked up; without one the token must carry uid and name itself.
type JWTGateway struct {
	secret []byte
	dir    Directory
}

func NewJWTGateway(secret string, dir Directory) *JWTGateway {
	return &JWTGateway{secret: []byte(secret), dir: dir}
}

func (g *JWTGateway) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, core.AuthError("token required")
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(tokenLeeway),
	)
	if err != nil {
		log.Debug().Err(err).Str("module", "identity").Msg("token rejected")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.AuthError("token expired")
		}
		return nil, core.AuthError("authentication failed")
	}

	if g.dir != nil && claims.UserID != nil {
		user, err := g.dir.ByAccountID(ctx, accountID(claims.UserID))
		if errors.Is(err, ErrUnknownAccount) {
			return nil, core.AuthError("user not found")
		}
		if err != nil {
			return nil, fmt.Errorf("directory lookup: %w", err)
		}
		return user, nil
	}

	uid, err := domain.ParseUID(claims.UID)
	if err != nil {
		return nil, core.AuthError("authentication failed")
	}
	user, err := domain.NewUser(uid, claims.Name)
	if err != nil {
		return nil, core.AuthError("authentication failed")
	}
	return user, nil
}

// accountID renders the userId claim, which may be a number or a string.
func accountID(v any) string {
	switch id := v.(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	}
	return fmt.Sprint(v)
}

// Exists asks the directory. Without one every well-formed uid is assumed to exist.
func (g *JWTGateway) Exists(ctx context.Context, uid domain.UID) (bool, error) {
	if g.dir == nil {
		return uid.Valid(), nil
	}
	return g.dir.Exists(ctx, uid)
}

func (g *JWTGateway) Touch(ctx context.Context, uid domain.UID) error {
	if g.dir == nil {
		return nil
	}
	return g.dir.Touch(ctx, uid)
}

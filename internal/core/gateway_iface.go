package core

import (
	"context"

	"github.com/dkeye/Call/internal/domain"
)

//go:generate mockgen -source=gateway_iface.go -destination=mocks/mock_gateway.go -package=mocks

// IdentityGateway verifies credentials and answers identity lookups.
// Implementations live in adapters/identity.
type IdentityGateway interface {
	// Verify returns the identity named by token or an AuthError.
	Verify(ctx context.Context, token string) (*domain.User, error)
	// Exists reports whether uid belongs to a registered user.
	Exists(ctx context.Context, uid domain.UID) (bool, error)
}

// PresenceTracker is optionally implemented by an IdentityGateway that can
// record when a user was last seen.
type PresenceTracker interface {
	Touch(ctx context.Context, uid domain.UID) error
}

// CallLog durably records terminal call outcomes.
type CallLog interface {
	Append(ctx context.Context, rec domain.CallRecord) error
}

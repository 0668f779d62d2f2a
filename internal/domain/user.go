// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	UIDLen            = 10
	MaxDisplayNameLen = 100
)

var (
	ErrInvalidUID      = errors.New("invalid uid format")
	ErrDisplayNameLong = errors.New("display name too long")
)

// UID is the externally issued 10-digit identity of a registered user.
type UID string

// Valid reports whether u is exactly UIDLen ASCII digits.
func (u UID) Valid() bool {
	if len(u) != UIDLen {
		return false
	}
	for i := 0; i < len(u); i++ {
		if u[i] < '0' || u[i] > '9' {
			return false
		}
	}
	return true
}

func ParseUID(raw string) (UID, error) {
	u := UID(raw)
	if !u.Valid() {
		return "", ErrInvalidUID
	}
	return u, nil
}

// User is an authenticated identity. Immutable for the lifetime of a connection.
type User struct {
	UID         UID    `json:"uid"`
	DisplayName string `json:"displayName"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(uid UID, displayName string) (*User, error) {
	if !uid.Valid() {
		return nil, ErrInvalidUID
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameLong
	}
	return &User{UID: uid, DisplayName: displayName}, nil
}

// PresenceStatus is what a client reports about itself via presence.update.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceOffline PresenceStatus = "offline"
	PresenceBusy    PresenceStatus = "busy"
)

func (p PresenceStatus) Valid() bool {
	switch p {
	case PresenceOnline, PresenceOffline, PresenceBusy:
		return true
	}
	return false
}

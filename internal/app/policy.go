package app

import (
	"fmt"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send queue is full.
type Policy interface {
	OnBackPressure(uid domain.UID, conn core.SignalConnection) BackpressureAction
}

// SimplePolicy closes connections that stop draining their queue.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(uid domain.UID, conn core.SignalConnection) BackpressureAction {
	return KickMember
}

// DropPolicy only discards the frame.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(uid domain.UID, conn core.SignalConnection) BackpressureAction {
	return DropFrame
}

// NewPolicy maps the backpressure config key to a policy.
func NewPolicy(name string) (Policy, error) {
	switch name {
	case "", "kick":
		return SimplePolicy{}, nil
	case "drop":
		return DropPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown backpressure policy %q", name)
}

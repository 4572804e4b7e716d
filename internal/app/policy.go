package app

import (
	"fmt"

	"github.com/dkeye/lanhub/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a recipient whose send queue is full.
type Policy interface {
	OnBackPressure(id domain.Identity) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.Identity) BackpressureAction { return DropFrame }

type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.Identity) BackpressureAction { return KickMember }

// PolicyByName maps the backpressure config value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}

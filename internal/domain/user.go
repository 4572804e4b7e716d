// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MaxUsernameLen = 64

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameInvalid = errors.New("username is not valid utf-8")
)

// Identity is the canonical, case-sensitive display name of a client.
type Identity string

// NewIdentity validates a raw username as sent in a register frame.
func NewIdentity(username string) (Identity, error) {
	if strings.TrimSpace(username) == "" {
		return "", ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	if !utf8.ValidString(username) {
		return "", ErrUsernameInvalid
	}
	return Identity(username), nil
}

// SameAs reports whether two identities are equal under case folding.
func (i Identity) SameAs(name string) bool {
	return strings.EqualFold(string(i), name)
}

func (i Identity) String() string { return string(i) }

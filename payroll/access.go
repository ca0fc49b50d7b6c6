package payroll

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// ACCESS GATE - Shared-password edit mode
// =============================================================================
//
// Edit mode is session state, not a security boundary. The gate checks one
// shared password and hands back a Capability value that callers thread
// through every mutating call. There is no global "admin" flag anywhere in
// the engine.

// Capability is the edit permission carried by a caller. The zero value is
// read-only.
type Capability struct {
	edit bool
}

// ReadOnly is the capability of a caller that never unlocked edit mode.
var ReadOnly = Capability{}

func (c Capability) CanEdit() bool { return c.edit }

// AccessGate keeps only the bcrypt hash of the shared password.
type AccessGate struct {
	hash []byte
}

// NewAccessGate hashes password. An empty password (or one bcrypt refuses,
// i.e. longer than 72 bytes) yields a gate that never unlocks.
func NewAccessGate(password string) *AccessGate {
	if password == "" {
		return &AccessGate{}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return &AccessGate{}
	}
	return &AccessGate{hash: hash}
}

// NewAccessGateFromHash uses a precomputed bcrypt hash (see HashPassword).
func NewAccessGateFromHash(hash string) (*AccessGate, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &AccessGate{hash: []byte(hash)}, nil
}

// HashPassword returns the bcrypt hash to put in PAYROLL_ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Unlock returns the edit capability when password matches.
func (g *AccessGate) Unlock(password string) (Capability, error) {
	if len(g.hash) == 0 || bcrypt.CompareHashAndPassword(g.hash, []byte(password)) != nil {
		return ReadOnly, ErrWrongPassword
	}
	return Capability{edit: true}, nil
}

// EditCapability returns the edit capability without a password check.
// Only process-level bootstrap code (seeding, tests) should use it.
func EditCapability() Capability {
	return Capability{edit: true}
}

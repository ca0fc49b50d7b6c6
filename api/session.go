package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/shift-payroll/payroll"
)

// EditTokenHeader carries the token returned by POST /api/session/login.
const EditTokenHeader = "X-Edit-Token"

// Sessions maps opaque edit tokens to the capability they unlocked.
// Tokens live until logout or process exit.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]payroll.Capability
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]payroll.Capability)}
}

// Open registers a capability and returns its token.
func (s *Sessions) Open(c payroll.Capability) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = c
	s.mu.Unlock()
	return token
}

// Capability returns the capability for token, ReadOnly when unknown.
func (s *Sessions) Capability(token string) payroll.Capability {
	if token == "" {
		return payroll.ReadOnly
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[token]
}

func (s *Sessions) Close(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func (s *Sessions) fromRequest(r *http.Request) payroll.Capability {
	return s.Capability(r.Header.Get(EditTokenHeader))
}

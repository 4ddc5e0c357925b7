// Package http01 is the built-in HTTP-01 challenge solver: it selects
// "http-01" challenges and hands the exact bytes a validator expects at
// http://<domain>/.well-known/acme-challenge/<token> to a pluggable
// ChallengeProvider.
package http01

import (
	"fmt"

	"github.com/go-acme/lego-crt/acme"
)

// ChallengeProvider publishes (and retracts) the key-authorization body
// a validator will GET at .well-known/acme-challenge/<token>.
type ChallengeProvider interface {
	Present(domain, token, keyAuthorization string) error
	CleanUp(domain, token, keyAuthorization string) error
}

// Solver adapts a ChallengeProvider into acme.Solver.
type Solver struct {
	Provider ChallengeProvider
}

// New wraps provider as an acme.Solver.
func New(provider ChallengeProvider) *Solver {
	return &Solver{Provider: provider}
}

func (s *Solver) Name() string { return "http-01" }

func (s *Solver) Select(chal acme.RawChallenge) bool {
	return chal.Type == "http-01"
}

func (s *Solver) Solve(domain string, chal acme.RawChallenge, keyAuthorization string) error {
	if err := s.Provider.Present(domain, chal.Token, keyAuthorization); err != nil {
		return fmt.Errorf("http01: present token for %s: %w", domain, err)
	}
	return nil
}

// Path returns the URL path (without scheme or host) a validator will
// GET for token, per RFC 8555 §8.3.
func Path(token string) string {
	return "/.well-known/acme-challenge/" + token
}

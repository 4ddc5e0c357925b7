package http01

import (
	"testing"

	"github.com/go-acme/lego-crt/acme"
)

type recordingProvider struct {
	domain, token, keyAuth string
}

func (p *recordingProvider) Present(domain, token, keyAuthorization string) error {
	p.domain, p.token, p.keyAuth = domain, token, keyAuthorization
	return nil
}

func (p *recordingProvider) CleanUp(domain, token, keyAuthorization string) error { return nil }

func TestSolverSelect(t *testing.T) {
	s := New(&recordingProvider{})
	if !s.Select(acme.RawChallenge{Type: "http-01"}) {
		t.Error("expected http-01 to be selected")
	}
	if s.Select(acme.RawChallenge{Type: "dns-01"}) {
		t.Error("expected dns-01 to be rejected")
	}
}

func TestSolverSolve(t *testing.T) {
	provider := &recordingProvider{}
	s := New(provider)

	if err := s.Solve("example.com", acme.RawChallenge{Type: "http-01", Token: "abc"}, "abc.thumb"); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if provider.domain != "example.com" || provider.token != "abc" || provider.keyAuth != "abc.thumb" {
		t.Errorf("unexpected provider call: %+v", provider)
	}
}

func TestPath(t *testing.T) {
	if got, want := Path("tok"), "/.well-known/acme-challenge/tok"; got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

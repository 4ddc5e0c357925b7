package dns01

import (
	"testing"

	"github.com/go-acme/lego-crt/acme"
)

type recordingProvider struct {
	presented []string
	err       error
}

func (p *recordingProvider) Present(domain, keyAuthDigest string) error {
	p.presented = append(p.presented, domain+"="+keyAuthDigest)
	return p.err
}

func (p *recordingProvider) CleanUp(domain, keyAuthDigest string) error { return nil }

func TestSolverSelect(t *testing.T) {
	s := New(&recordingProvider{})
	if !s.Select(acme.RawChallenge{Type: "dns-01"}) {
		t.Error("expected dns-01 to be selected")
	}
	if s.Select(acme.RawChallenge{Type: "http-01"}) {
		t.Error("expected http-01 to be rejected")
	}
}

func TestSolverSolvePresentsDigestNotRawKeyAuth(t *testing.T) {
	provider := &recordingProvider{}
	s := New(provider)

	keyAuth := "tok.thumb"
	if err := s.Solve("example.com", acme.RawChallenge{Type: "dns-01", Token: "tok"}, keyAuth); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	want := "example.com=" + acme.DNS01KeyAuthorizationDigest(keyAuth)
	if len(provider.presented) != 1 || provider.presented[0] != want {
		t.Errorf("presented = %v, want [%s]", provider.presented, want)
	}
}

func TestSolverSolvePropagatesProviderError(t *testing.T) {
	provider := &recordingProvider{err: errBoom{}}
	s := New(provider)

	if err := s.Solve("example.com", acme.RawChallenge{Type: "dns-01"}, "tok.thumb"); err == nil {
		t.Fatal("expected an error")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

package acme

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestKeyAuthorization(t *testing.T) {
	got := KeyAuthorization("tok", "thumb")
	want := "tok.thumb"
	if got != want {
		t.Errorf("KeyAuthorization = %q, want %q", got, want)
	}
}

func TestDNS01KeyAuthorizationDigest(t *testing.T) {
	ka := "tok.thumb"
	sum := sha256.Sum256([]byte(ka))
	want := base64.RawURLEncoding.EncodeToString(sum[:])

	if got := DNS01KeyAuthorizationDigest(ka); got != want {
		t.Errorf("digest = %q, want %q", got, want)
	}
}

func TestRawChallengeUnmarshalPreservesBytes(t *testing.T) {
	raw := []byte(`{"type":"http-01","token":"abc","uri":"https://example.com/c/1","extra":"field"}`)

	var c RawChallenge
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Type != "http-01" || c.Token != "abc" || c.URI != "https://example.com/c/1" {
		t.Fatalf("unexpected decode: %+v", c)
	}

	var roundTrip map[string]any
	if err := json.Unmarshal(c.Raw(), &roundTrip); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if roundTrip["extra"] != "field" {
		t.Errorf("Raw() lost the extra field the core doesn't model: %v", roundTrip)
	}
}

type stubSolver struct {
	selects string
}

func (s stubSolver) Name() string                 { return "stub" }
func (s stubSolver) Select(c RawChallenge) bool    { return c.Type == s.selects }
func (s stubSolver) Solve(string, RawChallenge, string) error { return nil }

func TestSelectChallengePicksFirstMatch(t *testing.T) {
	challenges := []RawChallenge{
		{Type: "dns-01", Token: "a"},
		{Type: "http-01", Token: "b"},
		{Type: "http-01", Token: "c"},
	}

	chal, ok := selectChallenge(stubSolver{selects: "http-01"}, challenges)
	if !ok {
		t.Fatal("expected a match")
	}
	if chal.Token != "b" {
		t.Errorf("selected token = %q, want %q", chal.Token, "b")
	}
}

func TestSelectChallengeNoMatch(t *testing.T) {
	challenges := []RawChallenge{{Type: "dns-01", Token: "a"}}
	_, ok := selectChallenge(stubSolver{selects: "http-01"}, challenges)
	if ok {
		t.Error("expected no match")
	}
}

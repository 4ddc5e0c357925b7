package acme

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// RawChallenge is one element of an authorization's "challenges" array,
// decoded loosely enough to let a Solver's Select inspect the type
// without the core needing to know about every challenge type there is.
type RawChallenge struct {
	Type  string          `json:"type"`
	Token string          `json:"token"`
	URI   string          `json:"uri"`
	raw   json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the original bytes around so a Solver's Select can
// decode provider-specific fields the core doesn't model.
func (c *RawChallenge) UnmarshalJSON(b []byte) error {
	type alias RawChallenge
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = RawChallenge(a)
	c.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Raw returns the original JSON bytes of the challenge.
func (c RawChallenge) Raw() json.RawMessage { return c.raw }

// rawAuthorization is the new-authz / polling response shape the core
// needs fields from; any "combinations" field is not decoded
// (combination logic is out of scope).
type rawAuthorization struct {
	Status     string         `json:"status"`
	Challenges []RawChallenge `json:"challenges"`
}

// Solver is the pluggable challenge strategy injected into the
// per-domain sub-flow (spec §4.6). Select picks one element from an
// authorization's challenge list; Solve performs the side effect that
// makes the chosen challenge's key authorization discoverable by the
// CA, then returns (so the state machine can tell the CA to validate).
// A Solver must be stateless across domains: it must not retain any
// reference to the session it's handed beyond a single Solve call.
type Solver interface {
	// Name is the ACME challenge type this solver handles, e.g. "http-01".
	Name() string
	// Select returns true if chal is one this solver can satisfy.
	Select(chal RawChallenge) bool
	// Solve publishes the key authorization for domain/chal by whatever
	// side channel this solver implements (filesystem, DNS API, ...).
	Solve(domain string, chal RawChallenge, keyAuthorization string) error
}

// KeyAuthorization returns "token.thumbprint", the value every HTTP-01
// responder must serve verbatim and every DNS-01 responder must hash.
func KeyAuthorization(token, thumbprint string) string {
	return token + "." + thumbprint
}

// DNS01KeyAuthorizationDigest returns base64url(sha256(keyAuthorization)),
// unpadded — the value published as the _acme-challenge TXT record.
func DNS01KeyAuthorizationDigest(keyAuthorization string) string {
	sum := sha256.Sum256([]byte(keyAuthorization))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// selectChallenge applies s.Select to each of an authorization's
// challenges in order and returns the first match.
func selectChallenge(s Solver, challenges []RawChallenge) (RawChallenge, bool) {
	for _, c := range challenges {
		if s.Select(c) {
			return c, true
		}
	}
	return RawChallenge{}, false
}

// Package dns01 is the built-in DNS-01 challenge solver: it selects
// "dns-01" challenges from an authorization, computes the TXT record
// value, and hands it to a pluggable ChallengeProvider. Concrete
// providers live under providers/dns01/<name> and wrap the real SDKs
// the teacher's go.mod lists (route53, cloudflare, azure, ...).
package dns01

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/go-acme/lego-crt/acme"
)

// ChallengeProvider publishes and retracts the TXT record a DNS-01
// challenge expects at _acme-challenge.<domain>. keyAuthDigest is
// already base64url(sha256(keyAuthorization)) — providers never see
// the raw key authorization.
type ChallengeProvider interface {
	Present(domain, keyAuthDigest string) error
	CleanUp(domain, keyAuthDigest string) error
}

// Solver adapts a ChallengeProvider into acme.Solver.
type Solver struct {
	Provider ChallengeProvider
	// Nameservers, if non-empty, are queried directly (bypassing the
	// OS resolver and any caching recursive resolver) to check the TXT
	// record is visible before returning from Solve. If empty,
	// propagation is not pre-checked and Solve returns as soon as
	// Present does.
	Nameservers []string
	// PropagationTimeout bounds how long checkPropagation will retry
	// the lookup. Defaults to 2 minutes.
	PropagationTimeout time.Duration
	// PropagationInterval is the wait between propagation lookups.
	// Defaults to 2 seconds.
	PropagationInterval time.Duration
}

// New wraps provider with the default (no propagation check) Solver.
func New(provider ChallengeProvider) *Solver {
	return &Solver{Provider: provider}
}

func (s *Solver) Name() string { return "dns-01" }

func (s *Solver) Select(chal acme.RawChallenge) bool {
	return chal.Type == "dns-01"
}

func (s *Solver) Solve(domain string, chal acme.RawChallenge, keyAuthorization string) error {
	digest := acme.DNS01KeyAuthorizationDigest(keyAuthorization)

	if err := s.Provider.Present(domain, digest); err != nil {
		return fmt.Errorf("dns01: present TXT for %s: %w", domain, err)
	}

	if len(s.Nameservers) == 0 {
		return nil
	}
	return s.checkPropagation(domain, digest)
}

// checkPropagation queries the configured nameservers directly for the
// _acme-challenge TXT record, the same pre-flight check the real lego
// project performs before telling the CA to validate, so a slow
// authoritative update doesn't cost a failed validation attempt.
func (s *Solver) checkPropagation(domain, digest string) error {
	timeout := s.PropagationTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	interval := s.PropagationInterval
	if interval == 0 {
		interval = 2 * time.Second
	}

	fqdn := "_acme-challenge." + strings.TrimSuffix(domain, ".") + "."
	deadline := time.Now().Add(timeout)
	for {
		if found, err := lookupTXT(fqdn, s.Nameservers, digest); err == nil && found {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("dns01: TXT record for %s did not propagate within %s", fqdn, timeout)
		}
		time.Sleep(interval)
	}
}

func lookupTXT(fqdn string, nameservers []string, want string) (bool, error) {
	m := new(dns.Msg)
	m.SetQuestion(fqdn, dns.TypeTXT)
	m.RecursionDesired = true

	c := new(dns.Client)
	var lastErr error
	for _, ns := range nameservers {
		addr := ns
		if _, _, err := net.SplitHostPort(ns); err != nil {
			addr = net.JoinHostPort(ns, "53")
		}
		resp, _, err := c.Exchange(m, addr)
		if err != nil {
			lastErr = err
			continue
		}
		for _, rr := range resp.Answer {
			if txt, ok := rr.(*dns.TXT); ok {
				if strings.Join(txt.Txt, "") == want {
					return true, nil
				}
			}
		}
	}
	return false, lastErr
}

// Package rfc2136 publishes DNS-01 TXT records via RFC 2136 dynamic
// DNS updates against an authoritative nameserver, rather than a
// hosted provider's HTTP API.
package rfc2136

import (
	"fmt"
	"time"

	"github.com/miekg/dns"

	coredns01 "github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider that speaks RFC 2136 dynamic
// update directly to nameserver, authenticated with a TSIG key.
type Provider struct {
	nameserver string
	tsigKey    string
	tsigSecret string
	tsigAlgo   string
	ttl        uint32
}

var _ coredns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider targeting nameserver ("host:port") using the
// named TSIG key/secret pair. algo defaults to dns.HmacSHA256 when
// empty.
func New(nameserver, tsigKey, tsigSecret, algo string) *Provider {
	if algo == "" {
		algo = dns.HmacSHA256
	}
	return &Provider{nameserver: nameserver, tsigKey: tsigKey, tsigSecret: tsigSecret, tsigAlgo: algo, ttl: 120}
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	return p.update(domain, keyAuthDigest, false)
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	return p.update(domain, keyAuthDigest, true)
}

func (p *Provider) update(domain, value string, remove bool) error {
	fqdn := dns.Fqdn("_acme-challenge." + domain)

	msg := new(dns.Msg)
	msg.SetUpdate(dns.Fqdn(zoneOf(domain)))

	rr, err := dns.NewRR(fmt.Sprintf("%s %d IN TXT %q", fqdn, p.ttl, value))
	if err != nil {
		return fmt.Errorf("rfc2136: build RR for %s: %w", fqdn, err)
	}

	if remove {
		msg.Remove([]dns.RR{rr})
	} else {
		msg.Insert([]dns.RR{rr})
	}

	client := new(dns.Client)
	if p.tsigKey != "" {
		msg.SetTsig(dns.Fqdn(p.tsigKey), p.tsigAlgo, 300, time.Now().Unix())
		client.TsigSecret = map[string]string{dns.Fqdn(p.tsigKey): p.tsigSecret}
	}
	_, _, err = client.Exchange(msg, p.nameserver)
	if err != nil {
		return fmt.Errorf("rfc2136: update %s: %w", fqdn, err)
	}
	return nil
}

func zoneOf(domain string) string {
	return domain
}

// Package goacmedns publishes DNS-01 TXT records via an acme-dns
// (github.com/joohoi/acme-dns) instance: a small delegated CNAME
// target purpose-built for ACME TXT records, so the main zone only
// ever needs a one-time CNAME delegation instead of per-renewal API
// credentials.
package goacmedns

import (
	"fmt"

	"github.com/cpu/goacmedns"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by acme-dns.
type Provider struct {
	client  goacmedns.Client
	storage goacmedns.Storage
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider against an acme-dns server at baseURL,
// persisting per-domain registered accounts (CNAME targets, subdomain
// credentials) to storagePath.
func New(baseURL, storagePath string) *Provider {
	return &Provider{
		client:  goacmedns.NewClient(baseURL),
		storage: goacmedns.NewFileStorage(storagePath, 0600),
	}
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	account, err := p.storage.FetchAccount(domain)
	if err != nil || account.FullDomain == "" {
		account, err = p.client.RegisterAccount(nil)
		if err != nil {
			return fmt.Errorf("goacmedns: register account for %s: %w", domain, err)
		}
		if err := p.storage.Put(domain, account); err != nil {
			return fmt.Errorf("goacmedns: persist account for %s: %w", domain, err)
		}
		if err := p.storage.Save(); err != nil {
			return fmt.Errorf("goacmedns: save storage: %w", err)
		}
		return fmt.Errorf("goacmedns: delegate %s as a CNAME to %s, then retry", domain, account.FullDomain)
	}

	if err := p.client.UpdateTXTRecord(account, keyAuthDigest); err != nil {
		return fmt.Errorf("goacmedns: update TXT for %s: %w", domain, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	// acme-dns has no delete API; the delegated subdomain simply holds
	// a stale TXT value until the next Present overwrites it.
	return nil
}

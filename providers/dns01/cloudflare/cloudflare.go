// Package cloudflare publishes DNS-01 TXT records via the Cloudflare
// API.
package cloudflare

import (
	"context"
	"fmt"
	"strings"

	cf "github.com/cloudflare/cloudflare-go"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by Cloudflare DNS.
type Provider struct {
	api *cf.API
	ttl int
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider authenticated with an API token (scoped to
// Zone:DNS:Edit), the mode Cloudflare recommends over the legacy
// global API key.
func New(apiToken string) (*Provider, error) {
	api, err := cf.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: %w", err)
	}
	return &Provider{api: api, ttl: 120}, nil
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	fqdn, zoneID, err := p.zoneFor(domain)
	if err != nil {
		return err
	}
	_, err = p.api.CreateDNSRecord(context.Background(), cf.ZoneIdentifier(zoneID), cf.CreateDNSRecordParams{
		Type:    "TXT",
		Name:    fqdn,
		Content: keyAuthDigest,
		TTL:     p.ttl,
	})
	if err != nil {
		return fmt.Errorf("cloudflare: create TXT for %s: %w", fqdn, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	fqdn, zoneID, err := p.zoneFor(domain)
	if err != nil {
		return err
	}

	records, _, err := p.api.ListDNSRecords(context.Background(), cf.ZoneIdentifier(zoneID), cf.ListDNSRecordsParams{
		Type: "TXT",
		Name: fqdn,
	})
	if err != nil {
		return fmt.Errorf("cloudflare: list TXT for %s: %w", fqdn, err)
	}
	for _, rec := range records {
		if rec.Content == keyAuthDigest {
			if err := p.api.DeleteDNSRecord(context.Background(), cf.ZoneIdentifier(zoneID), rec.ID); err != nil {
				return fmt.Errorf("cloudflare: delete TXT %s: %w", rec.ID, err)
			}
		}
	}
	return nil
}

func (p *Provider) zoneFor(domain string) (fqdn, zoneID string, err error) {
	fqdn = "_acme-challenge." + strings.TrimSuffix(domain, ".")
	zoneName := apexOf(domain)

	zoneID, err = p.api.ZoneIDByName(zoneName)
	if err != nil {
		return "", "", fmt.Errorf("cloudflare: resolve zone for %s: %w", zoneName, err)
	}
	return fqdn, zoneID, nil
}

// apexOf makes an approximate best effort at the registrable domain by
// keeping the last two labels; split-horizon or multi-level zones are
// not resolved correctly, and the provider has no option to name the
// zone explicitly.
func apexOf(domain string) string {
	parts := strings.Split(strings.TrimSuffix(domain, "."), ".")
	if len(parts) <= 2 {
		return domain
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

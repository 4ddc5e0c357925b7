// Package civo publishes DNS-01 TXT records via the Civo API.
package civo

import (
	"fmt"
	"strings"

	"github.com/civo/civogo"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by Civo DNS.
type Provider struct {
	client *civogo.Client
	ttl    int
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider authenticated with a Civo API token in the
// given region.
func New(apiToken, region string) (*Provider, error) {
	client, err := civogo.NewClient(apiToken, region)
	if err != nil {
		return nil, fmt.Errorf("civo: %w", err)
	}
	return &Provider{client: client, ttl: 120}, nil
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	zone, err := p.findZone(domain)
	if err != nil {
		return err
	}
	_, err = p.client.CreateDNSRecord(zone.ID, &civogo.DNSRecordConfig{
		Type:  civogo.DNSRecordTypeTXT,
		Name:  "_acme-challenge",
		Value: keyAuthDigest,
		TTL:   p.ttl,
	})
	if err != nil {
		return fmt.Errorf("civo: create TXT for %s: %w", domain, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	zone, err := p.findZone(domain)
	if err != nil {
		return err
	}
	records, err := p.client.ListDNSRecords(zone.ID)
	if err != nil {
		return fmt.Errorf("civo: list records for %s: %w", domain, err)
	}
	for _, rec := range records {
		if rec.Type == civogo.DNSRecordTypeTXT && rec.Name == "_acme-challenge" && rec.Value == keyAuthDigest {
			if _, err := p.client.DeleteDNSRecord(&rec); err != nil {
				return fmt.Errorf("civo: delete record %s: %w", rec.ID, err)
			}
		}
	}
	return nil
}

func (p *Provider) findZone(domain string) (*civogo.DNSDomain, error) {
	zone := apexOf(domain)
	zones, err := p.client.ListDNSDomains()
	if err != nil {
		return nil, fmt.Errorf("civo: list zones: %w", err)
	}
	for _, z := range zones {
		if z.Name == zone {
			return &z, nil
		}
	}
	return nil, fmt.Errorf("civo: no zone found for %s", domain)
}

func apexOf(domain string) string {
	domain = strings.TrimSuffix(domain, ".")
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return domain
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// Package scaleway publishes DNS-01 TXT records via Scaleway Domains
// and DNS.
package scaleway

import (
	"fmt"
	"strings"

	"github.com/scaleway/scaleway-sdk-go/api/domain/v2beta1"
	"github.com/scaleway/scaleway-sdk-go/scw"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by Scaleway DNS.
type Provider struct {
	api *domain.API
	ttl uint32
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider using a Scaleway client configured from
// environment variables (SCW_ACCESS_KEY, SCW_SECRET_KEY, ...).
func New() (*Provider, error) {
	client, err := scw.NewClient(scw.WithEnv())
	if err != nil {
		return nil, fmt.Errorf("scaleway: %w", err)
	}
	return &Provider{api: domain.NewAPI(client), ttl: 120}, nil
}

func (p *Provider) Present(domain_, keyAuthDigest string) error {
	zone := apexOf(domain_)
	_, err := p.api.UpdateDNSZoneRecords(&domain.UpdateDNSZoneRecordsRequest{
		DNSZone: zone,
		Changes: []*domain.RecordChange{
			{
				Add: &domain.RecordChangeAdd{
					Records: []*domain.Record{
						{
							Name: "_acme-challenge",
							Data: keyAuthDigest,
							TTL:  p.ttl,
							Type: domain.RecordTypeTXT,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("scaleway: create TXT for %s: %w", domain_, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain_, keyAuthDigest string) error {
	zone := apexOf(domain_)
	_, err := p.api.UpdateDNSZoneRecords(&domain.UpdateDNSZoneRecordsRequest{
		DNSZone: zone,
		Changes: []*domain.RecordChange{
			{
				Delete: &domain.RecordChangeDelete{
					Name: "_acme-challenge",
					Type: domain.RecordTypeTXT,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("scaleway: delete TXT for %s: %w", domain_, err)
	}
	return nil
}

func apexOf(d string) string {
	d = strings.TrimSuffix(d, ".")
	parts := strings.Split(d, ".")
	if len(parts) <= 2 {
		return d
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// Package ovh publishes DNS-01 TXT records via the OVH API.
package ovh

import (
	"fmt"
	"strings"

	"github.com/ovh/go-ovh/ovh"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by OVH DNS.
type Provider struct {
	client *ovh.Client
	ttl    int
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider against the given OVH API endpoint (e.g.
// "ovh-eu") using application key/secret and consumer key credentials.
func New(endpoint, appKey, appSecret, consumerKey string) (*Provider, error) {
	client, err := ovh.NewClient(endpoint, appKey, appSecret, consumerKey)
	if err != nil {
		return nil, fmt.Errorf("ovh: %w", err)
	}
	return &Provider{client: client, ttl: 120}, nil
}

type recordRequest struct {
	FieldType string `json:"fieldType"`
	SubDomain string `json:"subDomain"`
	Target    string `json:"target"`
	TTL       int    `json:"ttl"`
}

type recordResponse struct {
	ID int64 `json:"id"`
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	zone, sub := split(domain)

	var created recordResponse
	err := p.client.Post(fmt.Sprintf("/domain/zone/%s/record", zone), recordRequest{
		FieldType: "TXT",
		SubDomain: sub,
		Target:    keyAuthDigest,
		TTL:       p.ttl,
	}, &created)
	if err != nil {
		return fmt.Errorf("ovh: create TXT for %s: %w", domain, err)
	}

	return p.client.Post(fmt.Sprintf("/domain/zone/%s/refresh", zone), nil, nil)
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	zone, sub := split(domain)

	var ids []int64
	err := p.client.Get(fmt.Sprintf("/domain/zone/%s/record?fieldType=TXT&subDomain=%s", zone, sub), &ids)
	if err != nil {
		return fmt.Errorf("ovh: list TXT for %s: %w", domain, err)
	}

	for _, id := range ids {
		if err := p.client.Delete(fmt.Sprintf("/domain/zone/%s/record/%d", zone, id), nil); err != nil {
			return fmt.Errorf("ovh: delete TXT record %d: %w", id, err)
		}
	}
	return nil
}

// split breaks domain into its registrable zone and the
// "_acme-challenge" subdomain relative to that zone. OVH's own
// multi-level TLD table is more precise; this keeps the last two
// labels as a representative approximation.
func split(domain string) (zone, sub string) {
	domain = strings.TrimSuffix(domain, ".")
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return domain, "_acme-challenge"
	}
	zone = strings.Join(parts[len(parts)-2:], ".")
	return zone, "_acme-challenge." + strings.Join(parts[:len(parts)-2], ".")
}

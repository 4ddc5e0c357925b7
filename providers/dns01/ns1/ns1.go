// Package ns1 publishes DNS-01 TXT records via the NS1 API.
package ns1

import (
	"fmt"
	"net/http"
	"strings"

	api "gopkg.in/ns1/ns1-go.v2/rest"
	"gopkg.in/ns1/ns1-go.v2/rest/model/dns"

	corens1dns01 "github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by NS1.
type Provider struct {
	client *api.Client
	ttl    int
}

var _ corens1dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider authenticated with an NS1 API key.
func New(apiKey string) *Provider {
	client := api.NewClient(http.DefaultClient, api.SetAPIKey(apiKey))
	return &Provider{client: client, ttl: 120}
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	zone, fqdn := split(domain)
	record := dns.NewRecord(zone, fqdn, "TXT")
	record.TTL = p.ttl
	record.Answers = []*dns.Answer{dns.NewTXTAnswer(keyAuthDigest)}

	if _, err := p.client.Records.Create(record); err != nil {
		return fmt.Errorf("ns1: create TXT %s: %w", fqdn, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	zone, fqdn := split(domain)
	if _, err := p.client.Records.Delete(zone, fqdn, "TXT"); err != nil {
		return fmt.Errorf("ns1: delete TXT %s: %w", fqdn, err)
	}
	return nil
}

func split(domain string) (zone, fqdn string) {
	domain = strings.TrimSuffix(domain, ".")
	fqdn = "_acme-challenge." + domain
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return domain, fqdn
	}
	return strings.Join(parts[len(parts)-2:], "."), fqdn
}

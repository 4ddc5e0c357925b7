// Package linode publishes DNS-01 TXT records via the Linode API.
package linode

import (
	"context"
	"fmt"
	"strings"

	"github.com/linode/linodego"
	"golang.org/x/oauth2"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by Linode DNS.
type Provider struct {
	client linodego.Client
	ttl    int
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider authenticated with a Linode personal access
// token.
func New(token string) *Provider {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	oauthClient := oauth2.NewClient(context.Background(), src)
	client := linodego.NewClient(oauthClient)
	return &Provider{client: client, ttl: 120}
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	domainID, name, err := p.resolve(domain)
	if err != nil {
		return err
	}

	_, err = p.client.CreateDomainRecord(context.Background(), domainID, linodego.DomainRecordCreateOptions{
		Type:   linodego.RecordTypeTXT,
		Name:   name,
		Target: keyAuthDigest,
		TTLSec: p.ttl,
	})
	if err != nil {
		return fmt.Errorf("linode: create TXT %s: %w", name, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	domainID, name, err := p.resolve(domain)
	if err != nil {
		return err
	}

	records, err := p.client.ListDomainRecords(context.Background(), domainID, nil)
	if err != nil {
		return fmt.Errorf("linode: list records for %s: %w", name, err)
	}
	for _, rec := range records {
		if rec.Type == linodego.RecordTypeTXT && rec.Name == name && rec.Target == keyAuthDigest {
			if err := p.client.DeleteDomainRecord(context.Background(), domainID, rec.ID); err != nil {
				return fmt.Errorf("linode: delete record %d: %w", rec.ID, err)
			}
		}
	}
	return nil
}

func (p *Provider) resolve(domain string) (domainID int, name string, err error) {
	domain = strings.TrimSuffix(domain, ".")
	zone := apexOf(domain)

	domains, err := p.client.ListDomains(context.Background(), nil)
	if err != nil {
		return 0, "", fmt.Errorf("linode: list domains: %w", err)
	}
	for _, d := range domains {
		if d.Domain == zone {
			return d.ID, strings.TrimSuffix("_acme-challenge."+domain, "."+zone), nil
		}
	}
	return 0, "", fmt.Errorf("linode: no zone found for %s", domain)
}

func apexOf(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return domain
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

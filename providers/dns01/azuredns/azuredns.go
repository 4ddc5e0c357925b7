// Package azuredns publishes DNS-01 TXT records via Azure DNS.
package azuredns

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by Azure DNS.
type Provider struct {
	client        *armdns.RecordSetsClient
	resourceGroup string
	zone          string
	ttl           int64
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider for the given subscription, resource group and
// DNS zone, authenticating via the default Azure credential chain
// (environment, managed identity, or az CLI login).
func New(subscriptionID, resourceGroup, zone string) (*Provider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azuredns: credential: %w", err)
	}
	client, err := armdns.NewRecordSetsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azuredns: client: %w", err)
	}
	return &Provider{client: client, resourceGroup: resourceGroup, zone: zone, ttl: 120}, nil
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	name := p.recordName(domain)
	_, err := p.client.CreateOrUpdate(context.Background(), p.resourceGroup, p.zone, name, armdns.RecordTypeTXT, armdns.RecordSet{
		Properties: &armdns.RecordSetProperties{
			TTL: to.Ptr(p.ttl),
			TxtRecords: []*armdns.TxtRecord{
				{Value: []*string{to.Ptr(keyAuthDigest)}},
			},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("azuredns: create TXT %s: %w", name, err)
	}
	return nil
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	name := p.recordName(domain)
	_, err := p.client.Delete(context.Background(), p.resourceGroup, p.zone, name, armdns.RecordTypeTXT, nil)
	if err != nil {
		return fmt.Errorf("azuredns: delete TXT %s: %w", name, err)
	}
	return nil
}

// recordName strips the zone suffix, since Azure DNS record sets are
// named relative to the zone they live in rather than as a FQDN.
func (p *Provider) recordName(domain string) string {
	fqdn := "_acme-challenge." + strings.TrimSuffix(domain, ".")
	return strings.TrimSuffix(strings.TrimSuffix(fqdn, p.zone), ".")
}

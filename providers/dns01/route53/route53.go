// Package route53 publishes DNS-01 TXT records via Amazon Route 53.
// Adapted from the teacher's own (now-retired) goamz-based
// DNSProviderRoute53 to the aws-sdk-go-v2 stack its go.mod actually
// declares.
package route53

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/go-acme/lego-crt/challenge/dns01"
)

// Provider is a dns01.ChallengeProvider backed by Route 53.
type Provider struct {
	client *route53.Client
	ttl    int64
}

var _ dns01.ChallengeProvider = (*Provider)(nil)

// New builds a Provider using the default AWS credential chain
// (environment, shared config, or instance role), matching the
// fallback behavior of the teacher's original NewDNSProviderRoute53.
func New(ctx context.Context) (*Provider, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("route53: load AWS config: %w", err)
	}
	return &Provider{client: route53.NewFromConfig(cfg), ttl: 300}, nil
}

func (p *Provider) Present(domain, keyAuthDigest string) error {
	return p.changeRecord(types.ChangeActionUpsert, domain, keyAuthDigest)
}

func (p *Provider) CleanUp(domain, keyAuthDigest string) error {
	return p.changeRecord(types.ChangeActionDelete, domain, keyAuthDigest)
}

func (p *Provider) changeRecord(action types.ChangeAction, domain, value string) error {
	fqdn := "_acme-challenge." + strings.TrimSuffix(domain, ".") + "."

	zoneID, err := p.hostedZoneID(fqdn)
	if err != nil {
		return err
	}

	quoted := fmt.Sprintf("%q", value)
	_, err = p.client.ChangeResourceRecordSets(context.Background(), &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String("managed by acme dns-01 solver"),
			Changes: []types.Change{
				{
					Action: action,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            aws.String(fqdn),
						Type:            types.RRTypeTxt,
						TTL:             aws.Int64(p.ttl),
						ResourceRecords: []types.ResourceRecord{{Value: aws.String(quoted)}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("route53: change record sets for %s: %w", fqdn, err)
	}
	return nil
}

func (p *Provider) hostedZoneID(fqdn string) (string, error) {
	out, err := p.client.ListHostedZones(context.Background(), &route53.ListHostedZonesInput{})
	if err != nil {
		return "", fmt.Errorf("route53: list hosted zones: %w", err)
	}

	var best types.HostedZone
	for _, zone := range out.HostedZones {
		name := aws.ToString(zone.Name)
		if strings.HasSuffix(fqdn, name) && len(name) > len(aws.ToString(best.Name)) {
			best = zone
		}
	}
	if best.Id == nil {
		return "", fmt.Errorf("route53: no hosted zone found for %s", fqdn)
	}
	return aws.ToString(best.Id), nil
}

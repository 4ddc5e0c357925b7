// Package http01 collects deployment-side HTTP-01 providers: concrete
// ways to actually make a key authorization reachable at
// .well-known/acme-challenge/<token>, beyond the built-in interactive
// prompt.
package http01

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	corehttp01 "github.com/go-acme/lego-crt/challenge/http01"
)

// S3Provider publishes the HTTP-01 response body to a bucket fronted by
// an S3 static website (or a CDN reading straight from the bucket), the
// deployment shape the teacher's provider list anticipates with its own
// s3 challenge provider.
type S3Provider struct {
	Client *s3.Client
	Bucket string
}

// NewS3Provider builds a provider against client, publishing under
// bucket's .well-known/acme-challenge/ prefix.
func NewS3Provider(client *s3.Client, bucket string) *S3Provider {
	return &S3Provider{Client: client, Bucket: bucket}
}

var _ corehttp01.ChallengeProvider = (*S3Provider)(nil)

func (p *S3Provider) Present(domain, token, keyAuthorization string) error {
	key := objectKey(token)
	_, err := p.Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(p.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(keyAuthorization)),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("http01/s3: put %s: %w", key, err)
	}
	return nil
}

func (p *S3Provider) CleanUp(domain, token, keyAuthorization string) error {
	key := objectKey(token)
	_, err := p.Client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("http01/s3: delete %s: %w", key, err)
	}
	return nil
}

func objectKey(token string) string {
	return ".well-known/acme-challenge/" + token
}

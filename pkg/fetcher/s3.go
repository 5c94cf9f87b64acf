package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Gismakerr/DaChuang/pkg/cmr"
)

const (
	// DefaultRegion hosts the PO.DAAC cloud archive; direct access only works from there.
	DefaultRegion = "us-west-2"
	// DefaultCredentialsURL hands out temporary S3 credentials to Earthdata users.
	DefaultCredentialsURL = "https://archive.swot.podaac.earthdata.nasa.gov/s3credentials"
)

// S3Config configures direct S3 access.
type S3Config struct {
	CredentialsURL string
	Region         string
	Endpoint       string // optional custom endpoint, path-style addressing
}

// tempCredentials is the body returned by a DAAC s3credentials endpoint.
type tempCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
	Expiration      string `json:"expiration"`
}

// S3Source reads granules directly from the DAAC buckets.
type S3Source struct {
	client *s3.Client
}

// NewS3Source exchanges the session's Earthdata login for temporary S3 credentials.
func NewS3Source(ctx context.Context, session *cmr.Session, cfg S3Config) (*S3Source, error) {
	if cfg.CredentialsURL == "" {
		cfg.CredentialsURL = DefaultCredentialsURL
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	creds, err := fetchCredentials(ctx, session, cfg.CredentialsURL)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Source{client: client}, nil
}

func fetchCredentials(ctx context.Context, session *cmr.Session, endpoint string) (*tempCredentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build credentials request: %w", err)
	}
	resp, err := session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request s3 credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("s3 credentials request failed, status code: %d", resp.StatusCode)
	}
	var creds tempCredentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("failed to decode s3 credentials: %w", err)
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, fmt.Errorf("s3 credentials response is missing keys")
	}
	return &creds, nil
}

// GetObject opens bucket/key for reading.
func (s *S3Source) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object %s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(link string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(link, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %s", link)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url needs bucket and key: %s", link)
	}
	return bucket, key, nil
}

package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

// GetObjectAPI is the part of the S3 client used to fetch exports
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener resolves an export location, either a local path or s3://bucket/key
type Opener struct {
	s3 GetObjectAPI
}

// NewOpener builds an Opener. A nil client is created lazily from the default AWS config
// the first time an s3:// location is opened.
func NewOpener(client GetObjectAPI) *Opener {
	return &Opener{s3: client}
}

func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "s3://") {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open export %s: %w", location, err)
		}
		return f, nil
	}

	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}

	if o.s3 == nil {
		client, err := newS3Client(ctx)
		if err != nil {
			return nil, err
		}
		o.s3 = client
	}

	out, err := o.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	return out.Body, nil
}

func parseS3URI(location string) (string, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 location %q: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q: expected s3://bucket/key", location)
	}
	return u.Host, key, nil
}

func newS3Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithDefaultRegion(DefaultRegion))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vvka-141/whetl/pkg/whetl"
)

// Object is one listed object.
type Object struct {
	Key          string
	Name         string
	Size         int64
	LastModified time.Time
}

// Lister lists objects under a location.
type Lister struct {
	client s3.ListObjectsV2APIClient
}

// NewLister creates a Lister. Panics if client is nil.
func NewLister(client s3.ListObjectsV2APIClient) *Lister {
	if client == nil {
		panic("client cannot be nil")
	}
	return &Lister{client: client}
}

// NewS3Lister builds an S3 client from cfg and wraps it in a Lister.
func NewS3Lister(ctx context.Context, cfg Config) (*Lister, error) {
	awsCfg, err := AWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewLister(client), nil
}

// List returns every object under loc, following continuation tokens.
// Keys ending in "/" (folder markers) are skipped.
func (l *Lister) List(ctx context.Context, loc whetl.Location) ([]Object, error) {
	if loc.Bucket == "" {
		return nil, fmt.Errorf("bucket is required: %w", whetl.ErrInvalidLocation)
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(loc.Bucket)}
	if loc.Prefix != "" {
		input.Prefix = aws.String(loc.Prefix)
	}

	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(l.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", loc, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			objects = append(objects, Object{
				Key:          key,
				Name:         path.Base(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// Names returns the base names of the objects under loc.
func (l *Lister) Names(ctx context.Context, loc whetl.Location) ([]string, error) {
	objects, err := l.List(ctx, loc)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(objects))
	for i, o := range objects {
		names[i] = o.Name
	}
	return names, nil
}

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 serves ListObjectsV2 pages keyed by continuation token ("" is the first page).
type fakeS3 struct {
	pages  map[string]*s3.ListObjectsV2Output
	inputs []*s3.ListObjectsV2Input
	err    error
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[aws.ToString(in.ContinuationToken)]
	if !ok {
		return nil, errors.New("unexpected continuation token")
	}
	return page, nil
}

func object(key string, size int64) types.Object {
	return types.Object{
		Key:          aws.String(key),
		Size:         aws.Int64(size),
		LastModified: aws.Time(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
}

package storage

import (
	"fmt"
	"strings"

	"github.com/vvka-141/whetl/pkg/whetl"
)

const scheme = "s3://"

// ParseLocation parses s3://bucket[/prefix]. A trailing slash on the prefix is kept.
func ParseLocation(raw string) (whetl.Location, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(s), scheme) {
		return whetl.Location{}, fmt.Errorf("%q: expected %sbucket[/prefix]: %w", raw, scheme, whetl.ErrInvalidLocation)
	}
	s = s[len(scheme):]

	bucket, prefix, _ := strings.Cut(s, "/")
	if bucket == "" {
		return whetl.Location{}, fmt.Errorf("%q: bucket is empty: %w", raw, whetl.ErrInvalidLocation)
	}
	if strings.ContainsAny(bucket, " '\"") {
		return whetl.Location{}, fmt.Errorf("%q: invalid bucket name: %w", raw, whetl.ErrInvalidLocation)
	}
	if strings.Contains(prefix, "'") {
		return whetl.Location{}, fmt.Errorf("%q: prefix must not contain quotes: %w", raw, whetl.ErrInvalidLocation)
	}

	return whetl.Location{Bucket: bucket, Prefix: prefix}, nil
}

// Resolve returns loc unchanged when it is absolute, otherwise parses it as
// a path relative to base. Plain paths are joined onto base's prefix.
func Resolve(base whetl.Location, loc string) (whetl.Location, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(loc)), scheme) {
		return ParseLocation(loc)
	}
	if base.Bucket == "" {
		return whetl.Location{}, fmt.Errorf("%q is relative and no storage bucket is configured: %w", loc, whetl.ErrInvalidLocation)
	}
	if strings.Contains(loc, "'") {
		return whetl.Location{}, fmt.Errorf("%q: path must not contain quotes: %w", loc, whetl.ErrInvalidLocation)
	}
	return base.Join(loc), nil
}

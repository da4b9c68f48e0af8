// Package storage addresses the object storage that bulk loads read from and
// unloads write to.
//
// It parses s3://bucket/prefix locations, resolves the credentials embedded
// in COPY and UNLOAD statements, and lists objects under a prefix so the
// import ledger can work out which files are still pending.
package storage

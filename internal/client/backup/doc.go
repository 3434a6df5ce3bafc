// Package backup persists exported blueprint collections.
//
// A Sink stores and retrieves JSON documents by name. FileSink keeps them in
// a local directory; S3Sink keeps them in an S3-compatible bucket (AWS S3 or
// MinIO). New picks the S3 sink when a bucket is configured.
package backup

package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hupe1980/knngraph/blobstore"
	"github.com/hupe1980/knngraph/blobstore/minio"
	"github.com/hupe1980/knngraph/blobstore/s3"
)

// location is a parsed input or output reference.
type location struct {
	scheme string
	bucket string
	name   string
}

// parseLocation accepts s3://bucket/key, minio://bucket/key and local paths.
func parseLocation(ref string) (location, error) {
	if !strings.Contains(ref, "://") {
		abs, err := filepath.Abs(ref)
		if err != nil {
			return location{}, err
		}
		return location{scheme: "file", bucket: filepath.Dir(abs), name: filepath.Base(abs)}, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return location{}, err
	}
	name := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "s3", "minio":
		if u.Host == "" || name == "" {
			return location{}, fmt.Errorf("%s: want %s://bucket/key", ref, u.Scheme)
		}
		return location{scheme: u.Scheme, bucket: u.Host, name: name}, nil
	case "file":
		return location{scheme: "file", bucket: filepath.Dir(u.Path), name: filepath.Base(u.Path)}, nil
	default:
		return location{}, fmt.Errorf("%s: unsupported scheme %q", ref, u.Scheme)
	}
}

// openStore returns the store holding ref and the blob name within it.
func openStore(ctx context.Context, cfg Config, ref string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(ref)
	if err != nil {
		return nil, "", err
	}

	switch loc.scheme {
	case "s3":
		var opts []s3.Option
		if cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.S3.Endpoint))
		}
		store, err := s3.New(ctx, loc.bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, loc.name, nil
	case "minio":
		store, err := minio.New(minio.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Region:    cfg.Minio.Region,
			Secure:    cfg.Minio.Secure,
			Bucket:    loc.bucket,
		})
		if err != nil {
			return nil, "", err
		}
		return store, loc.name, nil
	default:
		return blobstore.NewLocalStore(loc.bucket), loc.name, nil
	}
}

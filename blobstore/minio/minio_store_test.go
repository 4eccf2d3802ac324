package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/knngraph/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(Config{Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, ErrMissingBucket)

	s, err := New(Config{Endpoint: "localhost:9000", Bucket: "b", Prefix: "data/"})
	require.NoError(t, err)
	assert.Equal(t, "data/x.parquet", s.key("x.parquet"))
	assert.Equal(t, "x.parquet", s.relative("data/x.parquet"))
	assert.Equal(t, "sub/y.csv", s.relative("data/sub/y.csv"))
}

func TestKeysWithoutPrefix(t *testing.T) {
	s := NewStore(nil, "b", "")
	assert.Equal(t, "x", s.key("x"))
	assert.Equal(t, "x", s.relative("x"))
}

// TestMinioStore_Integration requires a running MinIO instance, addressed
// by KNNGRAPH_MINIO_ENDPOINT.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("KNNGRAPH_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("KNNGRAPH_MINIO_ENDPOINT not set")
	}

	ctx := context.Background()
	store, err := New(Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "test-knngraph",
		Prefix:    "test-prefix/",
	})
	require.NoError(t, err)

	exists, err := store.client.BucketExists(ctx, store.bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(buf[:n]))

	r, err := blob.ReadRange(ctx, 12, 100)
	require.NoError(t, err)
	tail, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "world", string(tail))

	w, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")
	assert.Contains(t, names, "stream.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	require.NoError(t, store.Delete(ctx, "stream.txt"))

	_, err = store.Open(ctx, "test.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

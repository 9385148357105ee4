package s3_test

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sva/internal/config"
	"sva/internal/port"
	s3storage "sva/internal/storage/s3"
)

func newClient(t *testing.T) port.ObjectStorage {
	t.Helper()
	client, err := s3storage.NewS3Client(&config.S3Config{
		Region:        "sa-east-1",
		Bucket:        "sva-docs",
		Endpoint:      "http://localhost:9000",
		AccessKey:     "test",
		SecretKey:     "test",
		MaxFileSizeMB: 1,
	})
	require.NoError(t, err)
	return client
}

func TestS3Client_GetPresignedURL(t *testing.T) {
	client := newClient(t)

	raw, err := client.GetPresignedURL(context.Background(), "sva-docs", "extractions/abc/cotacao.pdf", 900)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/sva-docs/extractions/abc/cotacao.pdf", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestS3Client_Upload_RejectsOversizedObject(t *testing.T) {
	client := newClient(t)

	data := make([]byte, 2<<20)
	_, err := client.Upload(context.Background(), port.UploadInput{
		Bucket:      "sva-docs",
		Key:         "extractions/abc/big.pdf",
		Body:        bytes.NewReader(data),
		ContentType: "application/pdf",
		Size:        int64(len(data)),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds archive limit")
}

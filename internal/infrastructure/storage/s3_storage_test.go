package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
	infraconfig "github.com/greenshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validStorageConfig(endpoint string) *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Driver:        "s3",
		Bucket:        "images",
		Endpoint:      endpoint,
		Region:        "us-east-1",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
		UsePathStyle:  true,
		PublicBaseURL: "https://cdn.example.com/images",
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*infraconfig.StorageConfig)
		errMsg string
	}{
		{"missing bucket", func(c *infraconfig.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *infraconfig.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *infraconfig.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
		{"missing public url", func(c *infraconfig.StorageConfig) { c.PublicBaseURL = "" }, "public base url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStorageConfig("localhost:9000")
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := NewS3ObjectStorage(nil)
	assert.Error(t, err)
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	s, err := NewS3ObjectStorage(validStorageConfig("minio:9000"), WithLogger(zap.NewNop()))

	require.NoError(t, err)
	assert.Equal(t, "images", s.GetBucket())
}

// fakeS3 records PUT requests and answers like S3 for conditional writes
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		if _, exists := f.objects[r.URL.Path]; exists && r.Header.Get("If-None-Match") == "*" {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusPreconditionFailed)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>PreconditionFailed</Code><Message>At least one of the pre-conditions you specified did not hold</Message></Error>`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.headers[r.URL.Path] = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ObjectStorage_UploadAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, headers: map[string]http.Header{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	s, err := NewS3ObjectStorage(validStorageConfig(server.URL))
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Upload(ctx, "products/abc.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/products/abc.png", url)

	fake.mu.Lock()
	h := fake.headers["/images/products/abc.png"]
	fake.mu.Unlock()
	require.NotNil(t, h)
	assert.Equal(t, ImageCacheControl, h.Get("Cache-Control"))
	assert.Equal(t, "*", h.Get("If-None-Match"))
	assert.Equal(t, "image/png", h.Get("Content-Type"))

	_, err = s.Upload(ctx, "products/abc.png", []byte("other"), "image/png")
	assert.ErrorIs(t, err, catalogapp.ErrObjectExists)

	require.NoError(t, s.Delete(ctx, "products/abc.png"))
	_, err = s.Upload(ctx, "products/abc.png", []byte("again"), "image/png")
	assert.NoError(t, err)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStorage(validStorageConfig("localhost:9000"))
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "", nil, "image/png")
	assert.Error(t, err)
	assert.Error(t, s.Delete(context.Background(), ""))
}

func TestEndpointURL(t *testing.T) {
	for _, tt := range []struct {
		in     string
		useSSL bool
		want   string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.example.com", true, "https://s3.example.com"},
		{"https://s3.amazonaws.com", false, "https://s3.amazonaws.com"},
	} {
		got, err := endpointURL(tt.in, tt.useSSL)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

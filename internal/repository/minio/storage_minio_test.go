package minio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURL(t *testing.T) {
	got := ObjectURL("https://cdn.example.com/", "avatars", "profiles/abc def.png")
	assert.Equal(t, "https://cdn.example.com/avatars/profiles/abc%20def.png", got)

	name, ok := ObjectNameFromURL("https://cdn.example.com", "avatars", got)
	require.True(t, ok)
	assert.Equal(t, "profiles/abc def.png", name)

	_, ok = ObjectNameFromURL("https://cdn.example.com", "avatars", "https://elsewhere.example.com/avatars/x.png")
	assert.False(t, ok)
}

func TestUploadAndRemove(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
		body     string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			data, _ := io.ReadAll(r.Body)
			body = string(data)
			w.Header().Set("ETag", `"etag"`)
		}
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	storage := NewStorage(client, "https://cdn.example.com")

	url, err := storage.Upload(context.Background(), "avatars", "profiles/a.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/profiles/a.png", url)

	require.NoError(t, storage.Remove(context.Background(), "avatars", "profiles/a.png"))

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, requests, "PUT /avatars/profiles/a.png")
	assert.Contains(t, requests, "DELETE /avatars/profiles/a.png")
	assert.Contains(t, body, "png-bytes")
}

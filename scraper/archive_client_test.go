// scraper/archive_client_test.go
package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timemap = `<https://data.cdc.gov/d/abcd-1234>; rel="original",
<http://web.archive.org/web/20250115000000/https://data.cdc.gov/d/abcd-1234>; rel="first memento"; datetime="Wed, 15 Jan 2025 00:00:00 GMT"`

func TestWaybackClientLookupSnapshots(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(timemap))
	}))
	defer srv.Close()

	c := NewWaybackClient(srv.URL+"/web/timemap/link/", 5*time.Second)
	status, body, err := c.LookupSnapshots(context.Background(), "https://data.cdc.gov/d/abcd-1234")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, timemap, body)
	assert.True(t, strings.HasPrefix(gotPath, "/web/timemap/link/"), gotPath)
	assert.Contains(t, gotPath, "data.cdc.gov/d/abcd-1234")
}

func TestWaybackClientNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWaybackClient(srv.URL+"/", 5*time.Second)
	status, _, err := c.LookupSnapshots(context.Background(), "https://data.cdc.gov/d/abcd-1234")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWaybackClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := NewWaybackClient(srv.URL+"/", time.Second)
	_, body, err := c.LookupSnapshots(context.Background(), "https://data.cdc.gov/d/abcd-1234")
	require.Error(t, err)
	assert.Empty(t, body)
}

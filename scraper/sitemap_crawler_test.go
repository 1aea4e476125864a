// scraper/sitemap_crawler_test.go
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSitemapServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%[1]s/sitemap-datasets.xml</loc></sitemap>
  <sitemap><loc>%[1]s/missing.xml</loc></sitemap>
  <sitemap><loc>%[1]s/sitemap.xml</loc></sitemap>
</sitemapindex>`, srv.URL)
	})
	mux.HandleFunc("/sitemap-datasets.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://data.cdc.gov/d/abcd-1234</loc><lastmod>2025-01-10</lastmod></url>
  <url><loc> https://data.cdc.gov/browse </loc></url>
</urlset>`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSitemapCrawlerCrawl(t *testing.T) {
	srv := newSitemapServer(t)
	var logs bytes.Buffer
	c := NewSitemapCrawler(5*time.Second, 3, zerolog.New(&logs))

	locs, err := c.Crawl(context.Background(), []string{srv.URL + "/sitemap.xml"})
	require.NoError(t, err)

	require.Len(t, locs, 2)
	assert.Equal(t, SitemapLocation{SitemapURL: srv.URL + "/sitemap-datasets.xml", PageURL: "https://data.cdc.gov/d/abcd-1234"}, locs[0])
	assert.Equal(t, "https://data.cdc.gov/browse", locs[1].PageURL)
	assert.Contains(t, logs.String(), "could not fetch sitemap")
}

func TestSitemapCrawlerDepthLimit(t *testing.T) {
	srv := newSitemapServer(t)
	c := NewSitemapCrawler(5*time.Second, 1, zerolog.Nop())

	locs, err := c.Crawl(context.Background(), []string{srv.URL + "/sitemap.xml"})
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestSitemapCrawlerCanceled(t *testing.T) {
	srv := newSitemapServer(t)
	c := NewSitemapCrawler(5*time.Second, 3, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Crawl(ctx, []string{srv.URL + "/sitemap.xml"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteHomepageList(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHomepageList(&buf, []SitemapLocation{
		{SitemapURL: "https://data.cdc.gov/s1.xml", PageURL: "https://data.cdc.gov/d/abcd-1234"},
		{SitemapURL: "https://data.cdc.gov/s1.xml", PageURL: "https://data.cdc.gov/d/efgh-5678"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"https://data.cdc.gov/s1.xml,https://data.cdc.gov/d/abcd-1234\n"+
			"https://data.cdc.gov/s1.xml,https://data.cdc.gov/d/efgh-5678\n",
		buf.String())
}

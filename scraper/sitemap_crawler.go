// scraper/sitemap_crawler.go
package scraper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// SitemapLocation is one <loc> found in a urlset sitemap, together with the
// sitemap it came from.
type SitemapLocation struct {
	SitemapURL string
	PageURL    string
}

// SitemapCrawler walks sitemap indexes down to urlset sitemaps and collects
// page URLs. It produces the homepage list consumed by HomepageReader.
type SitemapCrawler struct {
	client   *http.Client
	maxDepth int
	log      zerolog.Logger
}

func NewSitemapCrawler(timeout time.Duration, maxDepth int, log zerolog.Logger) *SitemapCrawler {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &SitemapCrawler{
		client:   &http.Client{Timeout: timeout},
		maxDepth: maxDepth,
		log:      log,
	}
}

// Crawl visits every root sitemap. A sitemap that cannot be fetched or parsed
// is logged and skipped; Crawl only fails when the context is done.
func (c *SitemapCrawler) Crawl(ctx context.Context, roots []string) ([]SitemapLocation, error) {
	visited := make(map[string]bool)
	var out []SitemapLocation
	for _, root := range roots {
		var err error
		out, err = c.crawl(ctx, root, 1, visited, out)
		if err != nil {
			return out, err
		}
	}
	c.log.Info().Int("locations", len(out)).Int("sitemaps", len(visited)).Msg("finished crawling sitemaps")
	return out, nil
}

func (c *SitemapCrawler) crawl(ctx context.Context, sitemapURL string, depth int, visited map[string]bool, out []SitemapLocation) ([]SitemapLocation, error) {
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if visited[sitemapURL] {
		return out, nil
	}
	visited[sitemapURL] = true

	doc, err := c.fetch(ctx, sitemapURL)
	if err != nil {
		c.log.Error().Err(err).Str("sitemap_url", sitemapURL).Msg("could not fetch sitemap, skipping it")
		return out, nil
	}

	if doc.Find("sitemapindex").Length() > 0 {
		if depth >= c.maxDepth {
			c.log.Error().Str("sitemap_url", sitemapURL).Int("max_depth", c.maxDepth).
				Msg("sitemap index nested too deeply, not following it")
			return out, nil
		}
		var children []string
		doc.Find("sitemapindex sitemap loc").Each(func(_ int, s *goquery.Selection) {
			if loc := strings.TrimSpace(s.Text()); loc != "" {
				children = append(children, loc)
			}
		})
		c.log.Debug().Str("sitemap_url", sitemapURL).Int("children", len(children)).Msg("found sitemap index")
		for _, child := range children {
			if out, err = c.crawl(ctx, child, depth+1, visited, out); err != nil {
				return out, err
			}
		}
		return out, nil
	}

	found := 0
	doc.Find("urlset url loc").Each(func(_ int, s *goquery.Selection) {
		if loc := strings.TrimSpace(s.Text()); loc != "" {
			out = append(out, SitemapLocation{SitemapURL: sitemapURL, PageURL: loc})
			found++
		}
	})
	c.log.Debug().Str("sitemap_url", sitemapURL).Int("locations", found).Msg("parsed sitemap")
	return out, nil
}

func (c *SitemapCrawler) fetch(ctx context.Context, sitemapURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", sitemapURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(req)
	if err != nil {
		apiCallsTotal.WithLabelValues(endpointSitemap, "failure").Inc()
		return nil, fmt.Errorf("failed to get URL %s: %w", sitemapURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		apiCallsTotal.WithLabelValues(endpointSitemap, "failure").Inc()
		return nil, fmt.Errorf("failed to get URL %s: status code %d", sitemapURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		apiCallsTotal.WithLabelValues(endpointSitemap, "failure").Inc()
		return nil, fmt.Errorf("failed to parse sitemap from %s: %w", sitemapURL, err)
	}
	apiCallsTotal.WithLabelValues(endpointSitemap, "success").Inc()
	return doc, nil
}

// WriteHomepageList writes locations as "sitemap_url,page_url" lines.
func WriteHomepageList(w io.Writer, locations []SitemapLocation) error {
	bw := bufio.NewWriter(w)
	for _, loc := range locations {
		if _, err := fmt.Fprintf(bw, "%s,%s\n", loc.SitemapURL, loc.PageURL); err != nil {
			return fmt.Errorf("failed to write homepage list: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write homepage list: %w", err)
	}
	return nil
}

// cmd/crawl.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gewnthar/datasetdoc/scraper"
)

func (a *app) crawlCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "crawl [sitemap-url...]",
		Short: "Crawl sitemaps and write the homepage list used by document",
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := a.cfg.Crawler.Sitemaps
			if len(args) > 0 {
				roots = args
			}
			if output == "" {
				output = a.cfg.Crawler.OutputPath
			}

			crawler := scraper.NewSitemapCrawler(a.cfg.Crawler.Timeout, a.cfg.Crawler.MaxDepth, a.log)
			locs, err := crawler.Crawl(cmd.Context(), roots)
			if err != nil {
				return err
			}
			return a.writeHomepageList(output, locs)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "homepage list file to write (default from config)")
	return cmd
}

func (a *app) writeHomepageList(path string, locs []scraper.SitemapLocation) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create homepage list %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := scraper.WriteHomepageList(f, locs); err != nil {
		return err
	}
	a.log.Info().Str("path", path).Int("homepages", len(locs)).Msg("wrote homepage list")
	return nil
}

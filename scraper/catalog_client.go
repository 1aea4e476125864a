// scraper/catalog_client.go
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gewnthar/datasetdoc/models"
)

const userAgent = "datasetdoc/1.0 (+https://github.com/gewnthar/datasetdoc)"

// SocrataClient looks up dataset metadata in the Socrata discovery API.
type SocrataClient struct {
	baseURL  string
	appToken string
	client   *http.Client
}

func NewSocrataClient(baseURL, appToken string, timeout time.Duration) *SocrataClient {
	return &SocrataClient{
		baseURL:  baseURL,
		appToken: appToken,
		client:   &http.Client{Timeout: timeout},
	}
}

type catalogResponse struct {
	Results []struct {
		Resource struct {
			Name        string `json:"name"`
			ID          string `json:"id"`
			Description string `json:"description"`
			Type        string `json:"type"`
		} `json:"resource"`
		Metadata struct {
			Domain string `json:"domain"`
		} `json:"metadata"`
		Link      string `json:"link"`
		Permalink string `json:"permalink"`
	} `json:"results"`
	ResultSetSize int `json:"resultSetSize"`
}

// LookupDataset fetches the catalog entry for a dataset id. It never returns
// an error: failures come back as a nil payload with the reason in
// Diagnostic, and non-tabular resources come back as a payload carrying an
// "error" key.
func (c *SocrataClient) LookupDataset(ctx context.Context, identifier string) models.CatalogLookupResult {
	start := time.Now()
	defer func() {
		apiCallDurationSeconds.WithLabelValues(endpointSocrata).Observe(time.Since(start).Seconds())
	}()

	body, err := c.get(ctx, identifier)
	if err != nil {
		apiCallsTotal.WithLabelValues(endpointSocrata, "failure").Inc()
		return models.CatalogLookupResult{Diagnostic: err.Error()}
	}

	var resp catalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		apiCallsTotal.WithLabelValues(endpointSocrata, "failure").Inc()
		return models.CatalogLookupResult{
			Diagnostic: fmt.Sprintf("could not decode catalog response for %s: %v", identifier, err),
		}
	}
	if len(resp.Results) == 0 {
		apiCallsTotal.WithLabelValues(endpointSocrata, "not_found").Inc()
		return models.CatalogLookupResult{
			Diagnostic: fmt.Sprintf("could not find dataset with id %s", identifier),
		}
	}

	apiCallsTotal.WithLabelValues(endpointSocrata, "success").Inc()
	res := resp.Results[0]

	var datatype string
	switch res.Resource.Type {
	case "dataset":
		datatype = "tabular"
	case "map":
		datatype = "spatial"
	default:
		return models.CatalogLookupResult{Payload: models.CatalogPayload{
			"error": "dataset is not tabular or spatial data",
			"name":  res.Resource.Name,
			"id":    res.Resource.ID,
			"type":  res.Resource.Type,
		}}
	}

	homepage := res.Link
	if homepage == "" {
		homepage = res.Permalink
	}
	return models.CatalogLookupResult{Payload: models.CatalogPayload{
		"name":        res.Resource.Name,
		"id":          res.Resource.ID,
		"description": res.Resource.Description,
		"datatype":    datatype,
		"keywords":    []any{"socrata"},
		"domain":      res.Metadata.Domain,
		"homepage":    homepage,
	}}
}

func (c *SocrataClient) get(ctx context.Context, identifier string) ([]byte, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", c.baseURL, err)
	}
	q := reqURL.Query()
	q.Set("ids", identifier)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request for %s: %w", identifier, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request for %s failed: %w", identifier, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response for %s: %w", identifier, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog lookup for %s returned status code %d: %s", identifier, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

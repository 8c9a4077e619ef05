package discovery

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

// SearchResult is one organic result of the search API.
type SearchResult struct {
	Link    string `mapstructure:"link"`
	Title   string `mapstructure:"title"`
	Snippet string `mapstructure:"snippet"`
	Query   string
}

type searchResponse struct {
	Items []map[string]any `json:"items"`
}

// execute runs a single search query and returns at most num results.
func (c *Client) execute(query string, num int) ([]*SearchResult, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.cseID)
	q.Set("q", query)
	q.Set("num", fmt.Sprintf("%d", min(max(num, 1), maxPerRequest)))

	var response searchResponse
	if err := c.getJSON(c.APIURL, q, &response); err != nil {
		return nil, err
	}

	var results []*SearchResult
	cfg := &mapstructure.DecoderConfig{
		Result:           &results,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(response.Items); err != nil {
		return nil, fmt.Errorf("decode search items: %w", err)
	}

	for _, result := range results {
		result.Query = query
	}

	return results, nil
}

func (c *Client) getJSON(url string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	// The API key is part of the query, so only the path is logged.
	c.logger.Debug("make request", zap.String("url", req.URL.Host+req.URL.Path), zap.String("q", q.Get("q")))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

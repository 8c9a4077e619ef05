// Package discovery finds public LinkedIn profiles for a persona through the
// Google Custom Search JSON API and turns result snippets into candidates.
package discovery

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://www.googleapis.com/customsearch/v1"
	userAgent = "spigell/profile-scout"
	// Google returns at most 10 results per request.
	maxPerRequest = 10
	// Only the first queries of a persona are executed.
	maxQueriesPerPersona = 3
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	apiKey     string
	cseID      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, apiKey, cseID string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		ctx:    ctx,
		apiKey: apiKey,
		cseID:  cseID,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) configured() bool {
	return c.apiKey != "" && c.cseID != ""
}

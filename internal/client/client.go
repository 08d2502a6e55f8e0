package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/cache"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

// DebridClient reads the user's debrid account. Every call carries the caller's API key.
type DebridClient interface {
	ListMagnets(ctx context.Context, apiKey string) ([]models.DebridDownload, error)
	UnlockLink(ctx context.Context, apiKey, link string) (*models.ResolvedMedia, error)
}

// CatalogClient looks up catalog metadata and searches torrents for a title.
type CatalogClient interface {
	GetMeta(ctx context.Context, contentType, imdbID string) (*models.Meta, error)
	GetKitsuTitle(ctx context.Context, kitsuID string) (string, error)
	SearchTorrents(ctx context.Context, query string) ([]models.TorrentResult, error)
}

// Client groups every upstream API used by the addon.
type Client interface {
	DebridClient
	CatalogClient

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

const (
	defaultDebridTimeout = 15 * time.Second
	defaultSearchTimeout = 15 * time.Second
	searchCacheSize      = 100
	searchCacheTTL       = 15 * time.Minute
)

type client struct {
	debridHTTP  *http.Client
	catalogHTTP *http.Client
	debridURL   string
	agent       string
	searchURL   string
	cinemetaURL string
	kitsuURL    string
	searchCache cache.Cache
}

// NewClient creates the upstream client. Debrid and catalog services get separate
// HTTP clients so that an outage of one does not open the other's circuit breaker.
func NewClient(cfg *config.Config) (Client, error) {
	searchCache, err := cache.New("memory", cache.ProviderConfig{
		Size:  searchCacheSize,
		TTL:   searchCacheTTL,
		Group: "search",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	debridTimeout := config.ParseDuration("debrid.timeout", cfg.Debrid.Timeout, defaultDebridTimeout)
	searchTimeout := config.ParseDuration("search.timeout", cfg.Search.Timeout, defaultSearchTimeout)

	agent := cfg.Debrid.Agent
	if agent == "" {
		agent = "subtirrent"
	}

	return &client{
		debridHTTP:  newHTTPClient(cfg.ProxyConnectionString, debridTimeout),
		catalogHTTP: newHTTPClient(cfg.ProxyConnectionString, searchTimeout),
		debridURL:   cfg.Debrid.BaseURL,
		agent:       agent,
		searchURL:   cfg.Search.BaseURL,
		cinemetaURL: cfg.Cinemeta.BaseURL,
		kitsuURL:    cfg.Kitsu.BaseURL,
		searchCache: searchCache,
	}, nil
}

// newHTTPClient builds the transport chain: proxy-aware base transport, response
// decompression, then timeout and circuit breaker policies.
func newHTTPClient(proxy string, timeout time.Duration) *http.Client {
	// Clone DefaultTransport to keep its pooling, HTTP/2 and dial timeouts.
	base := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			base.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: newResilientTransport(newCompressionTransport(base), timeout),
	}
}

// Close releases the search cache.
func (c *client) Close() error {
	return c.searchCache.Close()
}

// getJSON performs a GET request and decodes a JSON body into out.
// Transport failures and non-2xx statuses become ErrUpstream.
func (c *client) getJSON(ctx context.Context, httpClient *http.Client, service, operation, endpoint string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", config.GetUserAgent())
	req.Header.Set("Accept", "application/json")
	for k, values := range header {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError(service, operation, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(service, operation, resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError(service, operation, fmt.Errorf("read response body: %w", err))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &apperrors.ErrUpstream{
			Service:   service,
			Operation: operation,
			Message:   "malformed response",
			Err:       err,
		}
	}
	return nil
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

const (
	searchService   = "torrentio"
	cinemetaService = "cinemeta"
	kitsuService    = "kitsu"
)

type searchResponse struct {
	Torrents []models.TorrentResult `json:"torrents"`
}

type metaResponse struct {
	Meta *models.Meta `json:"meta"`
}

type kitsuResponse struct {
	Data struct {
		Attributes struct {
			CanonicalTitle string `json:"canonicalTitle"`
		} `json:"attributes"`
	} `json:"data"`
}

// SearchTorrents queries the torrent search API. Results are cached per query.
func (c *client) SearchTorrents(ctx context.Context, query string) ([]models.TorrentResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("query", "must not be empty")
	}
	logger := config.GetLogger()

	if cached, ok := c.searchCache.Get(query); ok {
		var torrents []models.TorrentResult
		if err := json.Unmarshal(cached, &torrents); err == nil {
			logger.Debug().Str("query", query).Int("results", len(torrents)).Msg("Torrent search served from cache")
			return torrents, nil
		}
	}

	endpoint := fmt.Sprintf("%s/search?query=%s", strings.TrimRight(c.searchURL, "/"), url.QueryEscape(query))
	var resp searchResponse
	if err := c.getJSON(ctx, c.catalogHTTP, searchService, "search", endpoint, nil, &resp); err != nil {
		return nil, err
	}

	torrents := make([]models.TorrentResult, 0, len(resp.Torrents))
	for _, t := range resp.Torrents {
		if t.Magnet != "" {
			torrents = append(torrents, t)
		}
	}
	if len(torrents) == 0 {
		return nil, apperrors.NewNotFoundError("torrent", query)
	}

	if data, err := json.Marshal(torrents); err == nil {
		c.searchCache.Set(query, data)
	}
	logger.Info().Str("query", query).Int("results", len(torrents)).Msg("Torrent search completed")
	return torrents, nil
}

// GetMeta fetches catalog metadata for an IMDb id.
func (c *client) GetMeta(ctx context.Context, contentType, imdbID string) (*models.Meta, error) {
	if imdbID == "" {
		return nil, apperrors.NewValidationError("imdbID", "must not be empty")
	}
	endpoint := fmt.Sprintf("%s/meta/%s/%s.json",
		strings.TrimRight(c.cinemetaURL, "/"), url.PathEscape(contentType), url.PathEscape(imdbID))

	var resp metaResponse
	if err := c.getJSON(ctx, c.catalogHTTP, cinemetaService, "meta", endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Meta == nil || resp.Meta.SearchTitle() == "" {
		return nil, apperrors.NewNotFoundError("meta", imdbID)
	}
	return resp.Meta, nil
}

// GetKitsuTitle returns the canonical title of a Kitsu anime entry.
func (c *client) GetKitsuTitle(ctx context.Context, kitsuID string) (string, error) {
	if kitsuID == "" {
		return "", apperrors.NewValidationError("kitsuID", "must not be empty")
	}
	endpoint := fmt.Sprintf("%s/anime/%s", strings.TrimRight(c.kitsuURL, "/"), url.PathEscape(kitsuID))
	header := http.Header{"Accept": []string{"application/vnd.api+json"}}

	var resp kitsuResponse
	if err := c.getJSON(ctx, c.catalogHTTP, kitsuService, "anime", endpoint, header, &resp); err != nil {
		return "", err
	}
	title := strings.TrimSpace(resp.Data.Attributes.CanonicalTitle)
	if title == "" {
		return "", apperrors.NewNotFoundError("kitsu anime", kitsuID)
	}
	return title, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/client"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
	"github.com/Belphemur/Subtirrent/internal/parser"
)

// BingeGroup groups every stream served by the addon so clients keep the same source
// across episodes.
const BingeGroup = "subtirrent"

// StreamUpstream is the subset of the upstream client the stream finder needs.
type StreamUpstream interface {
	client.CatalogClient
	client.DebridClient
}

// TorrentStreamFinder searches torrents by title and unlocks the best hit through the
// debrid account.
type TorrentStreamFinder struct {
	upstream StreamUpstream
}

// NewStreamFinder creates a StreamFinder backed by the upstream client.
func NewStreamFinder(upstream StreamUpstream) *TorrentStreamFinder {
	return &TorrentStreamFinder{upstream: upstream}
}

// FindStreams implements StreamFinder. It returns at most one stream.
func (f *TorrentStreamFinder) FindStreams(ctx context.Context, userConfig models.UserConfig, contentType, id string) ([]models.Stream, error) {
	logger := config.GetLogger()
	apiKey := strings.TrimSpace(userConfig.AllDebrid.APIKey)
	if apiKey == "" {
		return nil, apperrors.NewValidationError("apiKey", "must not be empty")
	}

	query, err := f.searchQuery(ctx, userConfig, contentType, id)
	if err != nil {
		return nil, err
	}

	torrents, err := f.upstream.SearchTorrents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search torrents for %q: %w", query, err)
	}
	if len(torrents) == 0 {
		return nil, apperrors.NewNotFoundError("torrent", query)
	}
	best := torrents[0]

	media, err := f.upstream.UnlockLink(ctx, apiKey, best.Magnet)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock torrent %q: %w", best.Title, err)
	}

	logger.Info().Str("type", contentType).Str("query", query).Str("torrent", best.Title).Msg("Found stream")
	return []models.Stream{{
		Name: fmt.Sprintf("%s Torrent - %s", strings.ToUpper(contentType), query),
		URL:  media.URL,
		BehaviorHints: models.StreamBehaviorHints{
			BingeGroup: BingeGroup,
		},
	}}, nil
}

// searchQuery resolves the title to search for. Kitsu ids are looked up on Kitsu when
// the user enabled it; everything else goes through Cinemeta with the IMDb id.
func (f *TorrentStreamFinder) searchQuery(ctx context.Context, userConfig models.UserConfig, contentType, id string) (string, error) {
	contentID := parser.ParseContentID(id)
	if contentID.ID == "" {
		return "", apperrors.NewValidationError("id", "must not be empty")
	}

	if contentID.Source == "kitsu" {
		if !userConfig.Subtitle.Kitsu.Enabled {
			return "", apperrors.NewValidationError("id", "kitsu ids require kitsu lookups to be enabled")
		}
		title, err := f.upstream.GetKitsuTitle(ctx, contentID.ID)
		if err != nil {
			return "", fmt.Errorf("failed to look up kitsu title: %w", err)
		}
		return title, nil
	}

	meta, err := f.upstream.GetMeta(ctx, contentType, contentID.ID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch metadata: %w", err)
	}
	return meta.SearchTitle(), nil
}

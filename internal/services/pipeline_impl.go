package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/language"
	"github.com/Belphemur/Subtirrent/internal/metrics"
	"github.com/Belphemur/Subtirrent/internal/models"
)

// DefaultPipeline is the production Pipeline.
type DefaultPipeline struct {
	locator   MediaLocator
	prober    TrackProber
	store     SubtitleStore
	converter SubtitleConverter
	baseURL   string
}

// NewPipeline wires the pipeline components. baseURL is the public address used to
// build extraction URLs.
func NewPipeline(locator MediaLocator, prober TrackProber, store SubtitleStore, converter SubtitleConverter, baseURL string) *DefaultPipeline {
	return &DefaultPipeline{
		locator:   locator,
		prober:    prober,
		store:     store,
		converter: converter,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// ResolveSubtitles implements Pipeline.
func (p *DefaultPipeline) ResolveSubtitles(ctx context.Context, req models.ResolveRequest) models.SubtitlesResponse {
	logger := config.GetLogger()
	subtitles, err := p.resolve(ctx, req)
	if err != nil {
		kind := apperrors.Kind(err)
		metrics.ResolutionsTotal.WithLabelValues(kind).Inc()
		logger.Warn().
			Err(err).
			Str("kind", kind).
			Str("mediaId", req.MediaID).
			Int64("size", req.SizeHint).
			Bool("hasApiKey", req.APIKey != "").
			Msg("Subtitle resolution failed, returning no subtitles")
		return models.SubtitlesResponse{Subtitles: []models.SubtitleDescriptor{}}
	}

	metrics.ResolutionsTotal.WithLabelValues("success").Inc()
	metrics.ResolvedTracksTotal.Add(float64(len(subtitles)))
	logger.Info().Str("mediaId", req.MediaID).Int("subtitles", len(subtitles)).Msg("Resolved subtitles")
	return models.SubtitlesResponse{Subtitles: subtitles}
}

func (p *DefaultPipeline) resolve(ctx context.Context, req models.ResolveRequest) ([]models.SubtitleDescriptor, error) {
	format, err := validateResolveRequest(req)
	if err != nil {
		return nil, err
	}

	hint := req.Filename
	if hint == "" {
		hint = req.MediaID
	}
	media, err := p.locator.ResolveStreamURL(ctx, req.APIKey, req.SizeHint, hint)
	if err != nil {
		return nil, err
	}

	streams, err := p.prober.Probe(ctx, media.URL)
	if err != nil {
		// Unlocked links expire; a cached one that cannot be probed is likely stale.
		p.locator.Forget(req.APIKey, req.SizeHint, hint)
		return nil, err
	}

	preferred := language.NewSet(req.PreferredLanguages)
	subtitles := make([]models.SubtitleDescriptor, 0, len(streams))
	for _, stream := range streams {
		if !stream.IsSubtitle() {
			continue
		}
		lang := language.Canonicalize(stream.Language)
		if !preferred.Allows(lang) {
			continue
		}

		position := len(subtitles)
		id := SubtitleID(req.MediaID, position)
		record := models.CachedSubtitle{
			SourceURL:  media.URL,
			TrackIndex: stream.Index,
			Language:   lang,
			Format:     format,
		}
		if err := p.store.Put(id, record); err != nil {
			return nil, err
		}

		subtitles = append(subtitles, models.SubtitleDescriptor{
			ID:   id,
			URL:  ExtractionURL(p.baseURL, req.Token, id),
			Lang: lang,
			Name: trackName(lang, stream.Title, position),
		})
	}
	return subtitles, nil
}

// validateResolveRequest checks the required inputs and returns the normalized format.
func validateResolveRequest(req models.ResolveRequest) (models.OutputFormat, error) {
	switch {
	case strings.TrimSpace(req.MediaID) == "":
		return "", apperrors.NewValidationError("mediaId", "must not be empty")
	case strings.TrimSpace(req.APIKey) == "":
		return "", apperrors.NewValidationError("apiKey", "must not be empty")
	case req.SizeHint <= 0:
		return "", apperrors.NewValidationError("sizeHint", "must be positive")
	}
	format, ok := models.ParseOutputFormat(string(req.Format))
	if !ok {
		return "", apperrors.NewValidationError("outputFormat", fmt.Sprintf("unsupported format %q", req.Format))
	}
	return format, nil
}

// SubtitleID builds the identifier of the subtitle at position among the tracks
// returned for mediaID.
func SubtitleID(mediaID string, position int) string {
	return fmt.Sprintf("%s:%d", mediaID, position)
}

// ExtractionURL builds the public URL serving subtitleID. The token segment is omitted
// when empty.
func ExtractionURL(baseURL, token, subtitleID string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	if token != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(token))
	}
	b.WriteString("/extract/")
	b.WriteString(url.PathEscape(subtitleID))
	return b.String()
}

func trackName(lang, title string, position int) string {
	if title == "" {
		title = fmt.Sprintf("Track %d", position)
	}
	return language.DisplayName(lang) + " - " + title
}

// ExtractSubtitle implements Pipeline.
func (p *DefaultPipeline) ExtractSubtitle(ctx context.Context, subtitleID string) (*models.SubtitleStream, error) {
	logger := config.GetLogger()
	record, ok := p.store.Get(subtitleID)
	if !ok {
		metrics.ExtractionsTotal.WithLabelValues("not_found", "").Inc()
		return nil, apperrors.NewSubtitleNotFoundError(subtitleID)
	}

	format := record.Format
	body, err := p.converter.Convert(ctx, record.SourceURL, record.TrackIndex, format)
	if err != nil {
		var convErr *apperrors.ErrConversion
		if !errors.As(err, &convErr) {
			err = &apperrors.ErrConversion{TrackIndex: record.TrackIndex, Format: format.Codec(), Err: err}
		}
		metrics.ExtractionsTotal.WithLabelValues(apperrors.Kind(err), string(format)).Inc()
		return nil, err
	}

	logger.Info().
		Str("subtitleId", subtitleID).
		Int("track", record.TrackIndex).
		Str("format", string(format)).
		Msg("Streaming subtitle")

	metrics.ActiveConversions.Inc()
	return &models.SubtitleStream{
		ContentType: models.ContentTypeFor(format),
		Body:        &trackedStream{ReadCloser: body, format: string(format)},
	}, nil
}

// Stats implements Pipeline.
func (p *DefaultPipeline) Stats() models.CacheStats {
	return p.store.Stats()
}

// trackedStream records the extraction outcome once the consumer is done with it.
type trackedStream struct {
	io.ReadCloser
	format  string
	readErr error
	closed  bool
}

func (t *trackedStream) Read(b []byte) (int, error) {
	n, err := t.ReadCloser.Read(b)
	if err != nil && err != io.EOF && t.readErr == nil {
		t.readErr = err
	}
	return n, err
}

func (t *trackedStream) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	metrics.ActiveConversions.Dec()

	outcome := "success"
	if t.readErr != nil {
		outcome = apperrors.Kind(t.readErr)
		logger := config.GetLogger()
		logger.Error().Err(t.readErr).Str("format", t.format).Msg("Subtitle conversion failed mid-stream")
	}
	metrics.ExtractionsTotal.WithLabelValues(outcome, t.format).Inc()
	return t.ReadCloser.Close()
}

package models

import (
	"io"
	"strings"
	"time"
)

// OutputFormat is the subtitle container served to clients.
type OutputFormat string

const (
	FormatSRT OutputFormat = "srt"
	FormatVTT OutputFormat = "vtt"
)

// ParseOutputFormat maps a user supplied format name to an OutputFormat.
// "webvtt" is accepted as an alias of vtt.
func ParseOutputFormat(value string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "srt", "subrip":
		return FormatSRT, true
	case "vtt", "webvtt":
		return FormatVTT, true
	default:
		return "", false
	}
}

// Codec returns the encoder and muxer name the conversion tool expects for the format.
func (f OutputFormat) Codec() string {
	if f == FormatVTT {
		return "webvtt"
	}
	return "srt"
}

// ContentTypeFor returns the MIME type served for a converted subtitle.
func ContentTypeFor(f OutputFormat) string {
	if f == FormatVTT {
		return "text/vtt; charset=utf-8"
	}
	return "application/x-subrip; charset=utf-8"
}

// CachedSubtitle is a resolved, extractable subtitle reference.
type CachedSubtitle struct {
	SubtitleID   string       `json:"subtitleId"`
	SourceURL    string       `json:"sourceStreamUrl"`
	TrackIndex   int          `json:"trackIndex"`
	Language     string       `json:"language"`
	Format       OutputFormat `json:"outputFormat"`
	LastAccessed time.Time    `json:"lastAccessed"`
}

// SubtitleDescriptor is one entry of a resolution response.
type SubtitleDescriptor struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Lang string `json:"lang"`
	Name string `json:"name"`
}

// SubtitlesResponse is the body returned to the addon client for a subtitle request.
type SubtitlesResponse struct {
	Subtitles []SubtitleDescriptor `json:"subtitles"`
}

// ResolveRequest carries the ephemeral context of one resolution.
type ResolveRequest struct {
	MediaID            string
	Filename           string // optional name hint, used for the locator cache key
	SizeHint           int64
	APIKey             string
	Format             OutputFormat
	PreferredLanguages []string
	// Token is the opaque addon configuration segment echoed into extraction URLs.
	Token string
}

// SubtitleStream is a converted subtitle being produced by the conversion tool.
// Body must be closed by the consumer, which also terminates the producing process.
type SubtitleStream struct {
	ContentType string
	Body        io.ReadCloser
}

// CacheStats is a diagnostic snapshot of the subtitle store.
type CacheStats struct {
	Size int
	Max  int
	TTL  time.Duration
}

package testutil

import (
	"time"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// Values of the reference episode used across pipeline tests.
const (
	EpisodeFilename = "Show.S01E02.mkv"
	EpisodeSize     = int64(1441633438)
	EpisodeLink     = "https://alldebrid.com/f/episode"
	EpisodeURL      = "https://cdn.example.invalid/dl/Show.S01E02.mkv"
)

// EpisodeDownloads returns a listing with one Ready download holding the reference
// episode, completed five seconds before now, plus an unrelated pending download.
func EpisodeDownloads(now time.Time) []models.DebridDownload {
	completed := now.Add(-5 * time.Second)
	return []models.DebridDownload{
		{
			ID:          1,
			Name:        "Show.S01E02",
			Status:      models.DownloadStatusReady,
			CompletedAt: &completed,
			Files: []models.DebridFile{
				{Filename: "Show.S01E02.nfo", SizeBytes: 2048, Link: "https://alldebrid.com/f/nfo"},
				{Filename: EpisodeFilename, SizeBytes: EpisodeSize, Link: EpisodeLink},
			},
		},
		{
			ID:     2,
			Name:   "Other.Movie.2024",
			Status: models.DownloadStatusPending,
			Files: []models.DebridFile{
				{Filename: "Other.Movie.2024.mkv", SizeBytes: EpisodeSize, Link: "https://alldebrid.com/f/pending"},
			},
		},
	}
}

// EpisodeStreams returns the probe result of the reference episode: one video, one
// audio and two subtitle streams (English and Portuguese).
func EpisodeStreams() []models.MediaStream {
	return []models.MediaStream{
		{Index: 0, CodecType: "video", CodecName: "h264"},
		{Index: 1, CodecType: "audio", CodecName: "aac", Language: "eng"},
		{Index: 2, CodecType: models.CodecTypeSubtitle, CodecName: "subrip", Language: "eng", Title: "English"},
		{Index: 3, CodecType: models.CodecTypeSubtitle, CodecName: "ass", Language: "por"},
	}
}

// EpisodeFFprobeJSON is the ffprobe output matching EpisodeStreams.
const EpisodeFFprobeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "tags": {"language": "eng"}},
    {"index": 2, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "eng", "title": "English"}},
    {"index": 3, "codec_name": "ass", "codec_type": "subtitle", "tags": {"LANGUAGE": "por"}}
  ]
}`

// SampleVTT is a minimal WebVTT document.
const SampleVTT = "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nHello there.\n"

// SampleSRT is a minimal SubRip document.
const SampleSRT = "1\n00:00:01,000 --> 00:00:02,500\nHello there.\n"

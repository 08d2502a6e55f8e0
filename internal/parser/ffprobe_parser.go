package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// ffprobeStream mirrors one entry of `ffprobe -show_streams -of json`.
type ffprobeStream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Tags      map[string]string `json:"tags"`
}

// FFprobeParser decodes ffprobe JSON into media stream descriptors.
type FFprobeParser struct{}

// NewFFprobeParser creates a parser for ffprobe JSON output.
func NewFFprobeParser() Parser[[]models.MediaStream] {
	return &FFprobeParser{}
}

// Parse returns every stream in the output, in the order ffprobe listed them.
// An output without a "streams" array is treated as malformed.
func (p *FFprobeParser) Parse(body io.Reader) ([]models.MediaStream, error) {
	var raw struct {
		Streams *[]ffprobeStream `json:"streams"`
	}
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}
	if raw.Streams == nil {
		return nil, fmt.Errorf("ffprobe output has no streams field")
	}

	streams := make([]models.MediaStream, 0, len(*raw.Streams))
	for _, s := range *raw.Streams {
		streams = append(streams, models.MediaStream{
			Index:     s.Index,
			CodecType: strings.ToLower(s.CodecType),
			CodecName: s.CodecName,
			Language:  tag(s.Tags, "language"),
			Title:     tag(s.Tags, "title"),
		})
	}
	return streams, nil
}

// tag looks a key up case-insensitively; Matroska muxers disagree on tag casing.
func tag(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

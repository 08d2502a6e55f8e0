package parser

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/models"
)

// Extra holds the extra arguments a client appends to a subtitles request,
// e.g. "videoHash=c3d9f7efdb214343&videoSize=1441633438".
type Extra struct {
	VideoSize int64
	VideoHash string
	Filename  string
}

// ParseExtra parses the extra path segment. A trailing ".json" is ignored and an
// unparseable videoSize is reported as 0, which callers treat as a missing size hint.
func ParseExtra(raw string) Extra {
	raw = strings.TrimSuffix(raw, ".json")
	// ParseQuery keeps every pair it could decode even when it reports an error.
	values, _ := url.ParseQuery(raw)
	extra := Extra{
		VideoHash: values.Get("videoHash"),
		Filename:  values.Get("filename"),
	}
	if size, err := strconv.ParseInt(values.Get("videoSize"), 10, 64); err == nil && size > 0 {
		extra.VideoSize = size
	}
	return extra
}

// ContentID is a parsed catalog identifier such as "tt0903747:1:2" or "kitsu:1376:5".
type ContentID struct {
	Source string // "imdb" or "kitsu"
	ID     string // "tt0903747" or "1376"
}

// ParseContentID splits a catalog identifier into its source and primary id.
func ParseContentID(id string) ContentID {
	id = strings.TrimSuffix(id, ".json")
	parts := strings.Split(id, ":")
	if strings.EqualFold(parts[0], "kitsu") && len(parts) > 1 {
		return ContentID{Source: "kitsu", ID: parts[1]}
	}
	return ContentID{Source: "imdb", ID: parts[0]}
}

// DecodeUserConfig decodes the base64 JSON configuration token embedded in addon URLs.
// Both standard and URL-safe alphabets are accepted, with or without padding.
func DecodeUserConfig(token string) (models.UserConfig, error) {
	var cfg models.UserConfig
	token = strings.TrimSpace(token)
	if token == "" {
		return cfg, apperrors.NewValidationError("token", "must not be empty")
	}

	var data []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if data, err = enc.DecodeString(token); err == nil {
			break
		}
	}
	if err != nil {
		return cfg, apperrors.NewValidationError("token", "not valid base64")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, apperrors.NewValidationError("token", "not a JSON configuration")
	}
	return cfg, nil
}

// EncodeUserConfig produces the token DecodeUserConfig accepts.
func EncodeUserConfig(cfg models.UserConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

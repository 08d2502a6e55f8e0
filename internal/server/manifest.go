package server

import (
	"github.com/Belphemur/Subtirrent/internal/models"
)

const (
	manifestID   = "org.subtirrent"
	manifestName = "Subtirrent"
)

// NewManifest returns the addon manifest advertised at /manifest.json.
func NewManifest(version string) models.Manifest {
	if version == "" {
		version = "1.0.0"
	}
	return models.Manifest{
		ID:          manifestID,
		Version:     version,
		Name:        manifestName,
		Description: "Extracts embedded subtitles from torrents using AllDebrid",
		Resources:   []string{"subtitles"},
		Types:       []string{"movie", "series"},
		Catalogs:    []any{},
		IDPrefixes:  []string{"tt", "kitsu"},
		BehaviorHints: models.ManifestBehaviorHints{
			P2P:                   false,
			Configurable:          true,
			ConfigurationRequired: false,
		},
		Config: []models.ManifestConfigField{
			{Key: "alldebrid.apiKey", Type: "text", Title: "AllDebrid API Key", Required: true},
			{Key: "subtitle.format", Type: "select", Title: "Subtitle Format", Options: []string{"srt", "vtt"}, Default: "srt"},
		},
	}
}

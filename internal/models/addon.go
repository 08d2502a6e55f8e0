package models

// UserConfig is the per-user addon configuration carried in the URL token.
type UserConfig struct {
	AllDebrid struct {
		APIKey string `json:"apiKey"`
	} `json:"alldebrid"`
	Subtitle struct {
		Format             string   `json:"format"`
		PreferredLanguages []string `json:"preferredLanguages,omitempty"`
		Kitsu              struct {
			Enabled bool `json:"enabled"`
		} `json:"kitsu"`
	} `json:"subtitle"`
}

// Manifest is the addon handshake document.
type Manifest struct {
	ID            string                `json:"id"`
	Version       string                `json:"version"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Resources     []string              `json:"resources"`
	Types         []string              `json:"types"`
	Catalogs      []any                 `json:"catalogs"`
	IDPrefixes    []string              `json:"idPrefixes,omitempty"`
	BehaviorHints ManifestBehaviorHints `json:"behaviorHints"`
	Config        []ManifestConfigField `json:"config,omitempty"`
}

// ManifestBehaviorHints advertises client-side behavior of the addon.
type ManifestBehaviorHints struct {
	P2P                   bool `json:"p2p"`
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired"`
}

// ManifestConfigField declares one user editable configuration entry.
type ManifestConfigField struct {
	Key      string   `json:"key"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default"`
}

// Stream is a playable source returned by the stream resource.
type Stream struct {
	Name          string              `json:"name"`
	URL           string              `json:"url"`
	BehaviorHints StreamBehaviorHints `json:"behaviorHints"`
}

// StreamBehaviorHints groups consecutive episodes on the same source.
type StreamBehaviorHints struct {
	BingeGroup string `json:"bingeGroup,omitempty"`
}

// StreamsResponse is the body of the stream resource.
type StreamsResponse struct {
	Streams []Stream `json:"streams"`
}

// Meta is the subset of catalog metadata used to build torrent search queries.
type Meta struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Name           string `json:"name"`
	CanonicalTitle string `json:"canonicalTitle,omitempty"`
	Title          string `json:"title,omitempty"`
	Year           string `json:"year,omitempty"`
}

// SearchTitle returns the best title to search torrents with.
func (m Meta) SearchTitle() string {
	switch {
	case m.CanonicalTitle != "":
		return m.CanonicalTitle
	case m.Title != "":
		return m.Title
	default:
		return m.Name
	}
}

// TorrentResult is one hit of the torrent search API.
type TorrentResult struct {
	Title  string `json:"title"`
	Magnet string `json:"magnet"`
	Seeds  int    `json:"seeds,omitempty"`
	Size   int64  `json:"size,omitempty"`
}

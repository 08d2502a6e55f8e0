package models

// CodecTypeSubtitle is the codec type reported by the probing tool for subtitle streams.
const CodecTypeSubtitle = "subtitle"

// MediaStream describes one stream of a probed media resource.
type MediaStream struct {
	Index     int    `json:"index"`
	CodecType string `json:"codecType"`
	CodecName string `json:"codecName"`
	Language  string `json:"language,omitempty"` // raw tag as reported, not canonicalized
	Title     string `json:"title,omitempty"`
}

// IsSubtitle reports whether the stream is a subtitle track.
func (s MediaStream) IsSubtitle() bool {
	return s.CodecType == CodecTypeSubtitle
}

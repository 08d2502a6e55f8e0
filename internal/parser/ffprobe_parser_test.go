package parser

import (
	"strings"
	"testing"
)

const ffprobeFixture = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video"},
    {"index": 1, "codec_name": "eac3", "codec_type": "audio", "tags": {"language": "jpn"}},
    {"index": 2, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "eng", "title": "Full"}},
    {"index": 3, "codec_name": "ass", "codec_type": "SUBTITLE", "tags": {"LANGUAGE": "por", "TITLE": " Signs "}},
    {"index": 4, "codec_name": "hdmv_pgs_subtitle", "codec_type": "subtitle"}
  ]
}`

func TestFFprobeParser_Parse(t *testing.T) {
	t.Parallel()
	streams, err := NewFFprobeParser().Parse(strings.NewReader(ffprobeFixture))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(streams) != 5 {
		t.Fatalf("Expected 5 streams, got %d", len(streams))
	}

	if streams[0].IsSubtitle() || streams[1].IsSubtitle() {
		t.Error("Expected video and audio streams to not be subtitles")
	}
	if !streams[2].IsSubtitle() || streams[2].Language != "eng" || streams[2].Title != "Full" {
		t.Errorf("Unexpected stream 2: %+v", streams[2])
	}
	if !streams[3].IsSubtitle() || streams[3].Language != "por" || streams[3].Title != "Signs" {
		t.Errorf("Expected upper-case tags and codec type to be normalized, got %+v", streams[3])
	}
	if streams[4].Index != 4 || streams[4].Language != "" || streams[4].Title != "" {
		t.Errorf("Expected untagged stream to have empty tags, got %+v", streams[4])
	}
}

func TestFFprobeParser_Malformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty output", input: ""},
		{name: "not json", input: "Invalid data found when processing input"},
		{name: "missing streams", input: `{"format": {}}`},
		{name: "wrong type", input: `{"streams": {"index": 0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewFFprobeParser().Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected an error for malformed ffprobe output")
			}
		})
	}
}

func TestFFprobeParser_NoStreams(t *testing.T) {
	t.Parallel()
	streams, err := NewFFprobeParser().Parse(strings.NewReader(`{"streams": []}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(streams) != 0 {
		t.Errorf("Expected no streams, got %d", len(streams))
	}
}

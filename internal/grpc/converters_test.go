package grpc

import (
	"math"
	"reflect"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/Subtirrent/internal/models"
)

func TestConvertResolveRequestFromProto(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		fields map[string]interface{}
		want   models.ResolveRequest
	}{
		{
			name: "numeric size and language list",
			fields: map[string]interface{}{
				"media_id":            "tt1254207",
				"size_hint":           float64(734003200),
				"api_key":             "key",
				"output_format":       "srt",
				"preferred_languages": []interface{}{"eng", ""},
				"token":               "eyJ9",
			},
			want: models.ResolveRequest{
				MediaID:            "tt1254207",
				SizeHint:           734003200,
				APIKey:             "key",
				Format:             models.FormatSRT,
				PreferredLanguages: []string{"eng"},
				Token:              "eyJ9",
			},
		},
		{
			name: "string size and comma separated languages",
			fields: map[string]interface{}{
				"media_id":            "kitsu:1:3",
				"size_hint":           " 42 ",
				"preferred_languages": "pt-br, en",
			},
			want: models.ResolveRequest{
				MediaID:            "kitsu:1:3",
				SizeHint:           42,
				PreferredLanguages: []string{"pt-br", "en"},
			},
		},
		{
			name:   "negative and malformed sizes become zero",
			fields: map[string]interface{}{"media_id": "tt1", "size_hint": float64(-5)},
			want:   models.ResolveRequest{MediaID: "tt1"},
		},
		{
			name:   "unparsable string size",
			fields: map[string]interface{}{"size_hint": "huge"},
			want:   models.ResolveRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := structpb.NewStruct(tt.fields)
			if err != nil {
				t.Fatalf("NewStruct failed: %v", err)
			}
			if got := convertResolveRequestFromProto(s); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSizeFromValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		value *structpb.Value
		want  int64
	}{
		{name: "number", value: structpb.NewNumberValue(1441633438), want: 1441633438},
		{name: "largest exact float below int64 range", value: structpb.NewNumberValue(1 << 62), want: 1 << 62},
		{name: "two to the 63rd", value: structpb.NewNumberValue(math.Pow(2, 63)), want: 0},
		{name: "beyond int64", value: structpb.NewNumberValue(1e19), want: 0},
		{name: "not a number", value: structpb.NewNumberValue(math.NaN()), want: 0},
		{name: "positive infinity", value: structpb.NewNumberValue(math.Inf(1)), want: 0},
		{name: "string", value: structpb.NewStringValue("734003200"), want: 734003200},
		{name: "bool", value: structpb.NewBoolValue(true), want: 0},
		{name: "missing", value: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sizeFromValue(tt.value); got != tt.want {
				t.Errorf("sizeFromValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConvertResolveRequestFromProto_Nil(t *testing.T) {
	t.Parallel()
	if got := convertResolveRequestFromProto(nil); !reflect.DeepEqual(got, models.ResolveRequest{}) {
		t.Errorf("Expected zero request, got %+v", got)
	}
}

func TestConvertSubtitlesResponseToProto(t *testing.T) {
	t.Parallel()
	resp, err := convertSubtitlesResponseToProto(models.SubtitlesResponse{Subtitles: []models.SubtitleDescriptor{
		{ID: "tt1:0", URL: "http://localhost:7000/extract/tt1%3A0", Lang: "und", Name: "Track 0"},
	}})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	values := resp.GetFields()["subtitles"].GetListValue().GetValues()
	if len(values) != 1 {
		t.Fatalf("Expected 1 subtitle, got %d", len(values))
	}
	fields := values[0].GetStructValue().GetFields()
	for key, want := range map[string]string{"id": "tt1:0", "url": "http://localhost:7000/extract/tt1%3A0", "lang": "und", "name": "Track 0"} {
		if got := fields[key].GetStringValue(); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}

	empty, err := convertSubtitlesResponseToProto(models.SubtitlesResponse{})
	if err != nil {
		t.Fatalf("convert empty failed: %v", err)
	}
	if empty.GetFields()["subtitles"].GetListValue() == nil {
		t.Error("Expected an empty list rather than a missing field")
	}
}

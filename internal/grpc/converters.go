package grpc

import (
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/Subtirrent/internal/models"
)

// convertResolveRequestFromProto reads the resolve request keys out of a Struct.
// Numbers may arrive either as JSON numbers or as decimal strings.
func convertResolveRequestFromProto(s *structpb.Struct) models.ResolveRequest {
	fields := s.GetFields()
	req := models.ResolveRequest{
		MediaID:  fields["media_id"].GetStringValue(),
		Filename: fields["filename"].GetStringValue(),
		APIKey:   fields["api_key"].GetStringValue(),
		Format:   models.OutputFormat(fields["output_format"].GetStringValue()),
		Token:    fields["token"].GetStringValue(),
		SizeHint: sizeFromValue(fields["size_hint"]),
	}
	req.PreferredLanguages = languagesFromValue(fields["preferred_languages"])
	return req
}

func sizeFromValue(v *structpb.Value) int64 {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if math.IsNaN(n) || n < 0 || n >= math.MaxInt64 {
			return 0
		}
		return int64(n)
	case *structpb.Value_StringValue:
		size, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil || size < 0 {
			return 0
		}
		return size
	default:
		return 0
	}
}

// languagesFromValue accepts a list of strings or a single comma separated string.
func languagesFromValue(v *structpb.Value) []string {
	var raw []string
	switch kind := v.GetKind().(type) {
	case *structpb.Value_ListValue:
		for _, item := range kind.ListValue.GetValues() {
			raw = append(raw, item.GetStringValue())
		}
	case *structpb.Value_StringValue:
		raw = strings.Split(kind.StringValue, ",")
	}

	var langs []string
	for _, lang := range raw {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}

// convertSubtitlesResponseToProto renders a resolve result as {subtitles:[{id,url,lang,name}]}.
func convertSubtitlesResponseToProto(resp models.SubtitlesResponse) (*structpb.Struct, error) {
	subtitles := make([]interface{}, len(resp.Subtitles))
	for i, sub := range resp.Subtitles {
		subtitles[i] = map[string]interface{}{
			"id":   sub.ID,
			"url":  sub.URL,
			"lang": sub.Lang,
			"name": sub.Name,
		}
	}
	return structpb.NewStruct(map[string]interface{}{"subtitles": subtitles})
}

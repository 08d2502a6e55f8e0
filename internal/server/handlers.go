package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/models"
	"github.com/Belphemur/Subtirrent/internal/parser"
)

// extractChunkSize is the read size used when forwarding converted subtitles.
const extractChunkSize = 32 * 1024

type healthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Uptime    float64       `json:"uptime"`
	Timestamp int64         `json:"timestamp"`
	Cache     healthCache   `json:"cache"`
	AllDebrid healthService `json:"alldebrid"`
}

type healthCache struct {
	Size int    `json:"size"`
	Max  int    `json:"max"`
	TTL  string `json:"ttl"`
}

type healthService struct {
	Enabled    bool `json:"enabled"`
	Configured bool `json:"configured"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.pipeline.Stats()
	configured := s.defaultAPIKey != ""
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.startedAt).Seconds(),
		Timestamp: time.Now().UnixMilli(),
		Cache:     healthCache{Size: stats.Size, Max: stats.Max, TTL: stats.TTL.String()},
		AllDebrid: healthService{Enabled: configured, Configured: configured},
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewManifest(s.version))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]any{"metas": {}})
}

func (s *Server) handleSubtitles(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	logger := zerolog.Ctx(r.Context())
	token := pathVar(vars, "token")

	userConfig, err := parser.DecodeUserConfig(token)
	if err != nil {
		logger.Warn().Err(err).Msg("Rejected undecodable configuration token")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid configuration", Details: err.Error()})
		return
	}

	empty := models.SubtitlesResponse{Subtitles: []models.SubtitleDescriptor{}}
	apiKey := userConfig.AllDebrid.APIKey
	if apiKey == "" {
		apiKey = s.defaultAPIKey
	}
	format := userConfig.Subtitle.Format
	if apiKey == "" || format == "" {
		logger.Info().Bool("hasApiKey", apiKey != "").Str("format", format).Msg("Incomplete configuration, returning no subtitles")
		writeJSON(w, http.StatusOK, empty)
		return
	}

	extra := parser.ParseExtra(vars["extra"])
	if extra.VideoSize == 0 {
		if size, err := strconv.ParseInt(r.URL.Query().Get("videoSize"), 10, 64); err == nil {
			extra.VideoSize = size
		}
	}
	preferred := userConfig.Subtitle.PreferredLanguages
	if len(preferred) == 0 {
		preferred = s.preferredLanguages
	}

	resp := s.pipeline.ResolveSubtitles(r.Context(), models.ResolveRequest{
		MediaID:            pathVar(vars, "id"),
		Filename:           extra.Filename,
		SizeHint:           extra.VideoSize,
		APIKey:             apiKey,
		Format:             models.OutputFormat(format),
		PreferredLanguages: preferred,
		Token:              token,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	subtitleID := pathVar(vars, "id")
	logger := zerolog.Ctx(r.Context())

	stream, err := s.pipeline.ExtractSubtitle(r.Context(), subtitleID)
	if err != nil {
		writeExtractionError(w, r, subtitleID, err)
		return
	}
	defer stream.Body.Close()

	// The first chunk is read before any header is written so that a conversion that
	// fails immediately can still be reported with an error status.
	buf := make([]byte, extractChunkSize)
	n, readErr := readChunk(stream.Body, buf)
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		writeExtractionError(w, r, subtitleID, readErr)
		return
	}

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	var total int64
	for {
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				logger.Debug().Err(err).Int64("bytes", total).Msg("Client went away during subtitle streaming")
				return
			}
			total += int64(n)
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			break
		}
		n, readErr = stream.Body.Read(buf)
	}

	if !errors.Is(readErr, io.EOF) {
		// Headers are already sent; the truncated body is all the client gets.
		logger.Error().Err(readErr).Str("subtitleId", subtitleID).Int64("bytes", total).Msg("Subtitle conversion failed mid-stream")
		reportError(r, readErr, map[string]string{"subtitleId": subtitleID, "kind": apperrors.Kind(readErr)})
		return
	}
	logger.Debug().Str("subtitleId", subtitleID).Int64("bytes", total).Msg("Subtitle streamed")
}

// readChunk reads until it gets data or an error, skipping empty reads.
func readChunk(r io.Reader, buf []byte) (int, error) {
	for {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	logger := zerolog.Ctx(r.Context())

	userConfig, err := parser.DecodeUserConfig(pathVar(vars, "token"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid configuration", Details: err.Error()})
		return
	}
	if userConfig.AllDebrid.APIKey == "" {
		userConfig.AllDebrid.APIKey = s.defaultAPIKey
	}

	contentType := strings.ToLower(pathVar(vars, "type"))
	streams, err := s.streams.FindStreams(r.Context(), userConfig, contentType, pathVar(vars, "id"))
	if err != nil {
		logger.Error().Err(err).Str("type", contentType).Str("kind", apperrors.Kind(err)).Msg("Stream lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to find streams", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.StreamsResponse{Streams: streams})
}

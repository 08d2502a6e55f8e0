package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

const debridService = "alldebrid"

// Magnet status codes reported by the debrid API.
const (
	magnetStatusInQueue   = 0
	magnetStatusUploading = 3
	magnetStatusReady     = 4
)

// debridEnvelope is the common response shape: {status, data, error{code, message}}.
type debridEnvelope[T any] struct {
	Status string       `json:"status"`
	Data   T            `json:"data"`
	Error  *debridError `json:"error,omitempty"`
}

type debridError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type magnetStatusData struct {
	// Magnets is an array when listing and an object when a single id is requested.
	Magnets json.RawMessage `json:"magnets"`
}

type debridMagnet struct {
	ID             int64            `json:"id"`
	Filename       string           `json:"filename"`
	Status         string           `json:"status"`
	StatusCode     *int             `json:"statusCode"`
	CompletionDate int64            `json:"completionDate"`
	Links          []debridLink     `json:"links"`
	Files          []debridFileNode `json:"files"`
}

// debridLink is a v4 flat file entry.
type debridLink struct {
	Link     string `json:"link"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// debridFileNode is a v4.1 file tree node: files carry a link, directories carry entries.
type debridFileNode struct {
	N string           `json:"n"`
	S int64            `json:"s"`
	L string           `json:"l"`
	E []debridFileNode `json:"e"`
}

type unlockData struct {
	Link     string `json:"link"`
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
	Delayed  int64  `json:"delayed"`
}

func (c *client) debridHeader(apiKey string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + apiKey}}
}

// ListMagnets fetches the account's active-download listing.
func (c *client) ListMagnets(ctx context.Context, apiKey string) ([]models.DebridDownload, error) {
	if apiKey == "" {
		return nil, apperrors.NewValidationError("apiKey", "must not be empty")
	}
	logger := config.GetLogger()
	const operation = "magnet status"

	endpoint := fmt.Sprintf("%s/magnet/status?agent=%s", strings.TrimRight(c.debridURL, "/"), url.QueryEscape(c.agent))

	var envelope debridEnvelope[magnetStatusData]
	if err := c.getJSON(ctx, c.debridHTTP, debridService, operation, endpoint, c.debridHeader(apiKey), &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != "success" {
		return nil, envelopeError(operation, envelope.Error)
	}

	magnets, err := decodeMagnets(envelope.Data.Magnets)
	if err != nil {
		return nil, &apperrors.ErrUpstream{Service: debridService, Operation: operation, Message: "malformed magnets", Err: err}
	}

	downloads := make([]models.DebridDownload, 0, len(magnets))
	for _, m := range magnets {
		downloads = append(downloads, toDownload(m))
	}

	logger.Debug().Int("downloads", len(downloads)).Msg("Fetched debrid downloads")
	return downloads, nil
}

func decodeMagnets(raw json.RawMessage) ([]debridMagnet, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var single debridMagnet
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		return []debridMagnet{single}, nil
	}
	var magnets []debridMagnet
	if err := json.Unmarshal(raw, &magnets); err != nil {
		return nil, err
	}
	return magnets, nil
}

func toDownload(m debridMagnet) models.DebridDownload {
	download := models.DebridDownload{
		ID:     m.ID,
		Name:   m.Filename,
		Status: downloadStatus(m),
	}
	if m.CompletionDate > 0 {
		completed := time.Unix(m.CompletionDate, 0)
		download.CompletedAt = &completed
	}

	if len(m.Files) > 0 {
		download.Files = flattenFileTree(m.Files, "", nil)
		return download
	}
	download.Files = make([]models.DebridFile, 0, len(m.Links))
	for _, l := range m.Links {
		download.Files = append(download.Files, models.DebridFile{
			Filename:  l.Filename,
			SizeBytes: l.Size,
			Link:      l.Link,
		})
	}
	return download
}

func downloadStatus(m debridMagnet) models.DownloadStatus {
	if strings.EqualFold(m.Status, string(models.DownloadStatusReady)) {
		return models.DownloadStatusReady
	}
	if m.StatusCode == nil {
		return models.DownloadStatus(m.Status)
	}
	switch code := *m.StatusCode; {
	case code == magnetStatusReady:
		return models.DownloadStatusReady
	case code >= magnetStatusInQueue && code <= magnetStatusUploading:
		return models.DownloadStatusPending
	default:
		return models.DownloadStatusError
	}
}

// flattenFileTree walks a v4.1 tree depth-first, naming files by their path.
func flattenFileTree(nodes []debridFileNode, dir string, files []models.DebridFile) []models.DebridFile {
	for _, node := range nodes {
		path := node.N
		if dir != "" {
			path = dir + "/" + node.N
		}
		if len(node.E) > 0 {
			files = flattenFileTree(node.E, path, files)
			continue
		}
		if node.L != "" {
			files = append(files, models.DebridFile{Filename: path, SizeBytes: node.S, Link: node.L})
		}
	}
	return files
}

// UnlockLink converts a file handle into a direct, streamable URL.
func (c *client) UnlockLink(ctx context.Context, apiKey, link string) (*models.ResolvedMedia, error) {
	if apiKey == "" {
		return nil, apperrors.NewValidationError("apiKey", "must not be empty")
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, apperrors.NewValidationError("link", "must not be empty")
	}
	const operation = "link unlock"

	query := url.Values{}
	query.Set("agent", c.agent)
	query.Set("link", link)
	endpoint := fmt.Sprintf("%s/link/unlock?%s", strings.TrimRight(c.debridURL, "/"), query.Encode())

	var envelope debridEnvelope[unlockData]
	if err := c.getJSON(ctx, c.debridHTTP, debridService, operation, endpoint, c.debridHeader(apiKey), &envelope); err != nil {
		return nil, err
	}
	if envelope.Status != "success" {
		return nil, envelopeError(operation, envelope.Error)
	}
	if envelope.Data.Delayed > 0 {
		return nil, &apperrors.ErrUpstream{
			Service:   debridService,
			Operation: operation,
			Message:   fmt.Sprintf("link is being generated (delayed id %d)", envelope.Data.Delayed),
		}
	}
	if envelope.Data.Link == "" {
		return nil, &apperrors.ErrUpstream{Service: debridService, Operation: operation, Message: "empty link"}
	}

	return &models.ResolvedMedia{URL: envelope.Data.Link, Filename: envelope.Data.Filename}, nil
}

package grpc

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Belphemur/Subtirrent/internal/apperrors"
	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
	"github.com/Belphemur/Subtirrent/internal/services"
)

const (
	errorDomain    = "subtirrent"
	chunkSize      = 32 * 1024
	emptyChunkRead = 100
)

// server implements SubtitleServiceServer on top of the resolution pipeline
type server struct {
	pipeline services.Pipeline
	logger   zerolog.Logger
}

// NewServer creates a new gRPC server implementation
func NewServer(pipeline services.Pipeline) SubtitleServiceServer {
	return &server{
		pipeline: pipeline,
		logger:   config.GetLogger(),
	}
}

// ResolveSubtitles implements SubtitleServiceServer.ResolveSubtitles
func (s *server) ResolveSubtitles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resolveReq := convertResolveRequestFromProto(req)
	s.logger.Debug().
		Str("media_id", resolveReq.MediaID).
		Int64("size_hint", resolveReq.SizeHint).
		Str("format", string(resolveReq.Format)).
		Msg("ResolveSubtitles called")

	result := s.pipeline.ResolveSubtitles(ctx, resolveReq)

	resp, err := convertSubtitlesResponseToProto(result)
	if err != nil {
		s.logger.Error().Err(err).Str("media_id", resolveReq.MediaID).Msg("Failed to encode subtitles")
		resp, _ = convertSubtitlesResponseToProto(models.SubtitlesResponse{})
	}

	s.logger.Debug().Str("media_id", resolveReq.MediaID).Int("count", len(result.Subtitles)).Msg("ResolveSubtitles completed")
	return resp, nil
}

// ExtractSubtitle implements SubtitleServiceServer.ExtractSubtitle
func (s *server) ExtractSubtitle(req *wrapperspb.StringValue, stream ExtractSubtitleServer) error {
	subtitleID := req.GetValue()
	logger := s.logger.With().Str("subtitle_id", subtitleID).Logger()
	logger.Debug().Msg("ExtractSubtitle called")

	result, err := s.pipeline.ExtractSubtitle(stream.Context(), subtitleID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to start subtitle extraction")
		return toStatusError(err)
	}
	defer result.Body.Close()

	buf := make([]byte, chunkSize)
	n, readErr := readChunk(result.Body, buf)
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		logger.Error().Err(readErr).Msg("Subtitle conversion failed before output")
		return toStatusError(readErr)
	}

	if err := stream.SetHeader(metadata.Pairs(ContentTypeHeader, result.ContentType)); err != nil {
		return err
	}

	var total int
	for n > 0 {
		if err := stream.Send(wrapperspb.Bytes(append([]byte(nil), buf[:n]...))); err != nil {
			logger.Debug().Err(err).Int("bytes", total).Msg("Client went away during extraction")
			return err
		}
		total += n
		if readErr != nil {
			break
		}
		n, readErr = readChunk(result.Body, buf)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			logger.Error().Err(readErr).Int("bytes", total).Msg("Subtitle conversion failed mid-stream")
			return toStatusError(readErr)
		}
	}

	logger.Debug().Int("bytes", total).Msg("ExtractSubtitle completed")
	return nil
}

// readChunk reads until it gets data or an error, tolerating a bounded number of empty reads.
func readChunk(r io.Reader, buf []byte) (int, error) {
	for i := 0; i < emptyChunkRead; i++ {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
	return 0, io.ErrNoProgress
}

// toStatusError maps the application error taxonomy onto gRPC status codes and attaches
// an ErrorInfo detail whose reason is the error kind.
func toStatusError(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, &apperrors.ErrNotFound{}):
		code = codes.NotFound
	case errors.Is(err, &apperrors.ErrValidation{}):
		code = codes.InvalidArgument
	case errors.Is(err, &apperrors.ErrConversion{}):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}

	st := status.New(code, err.Error())
	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: apperrors.Kind(err),
		Domain: errorDomain,
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

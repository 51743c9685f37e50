package whisper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	apperrors "hy-whisper/internal/app/errors"
	"hy-whisper/internal/config"
)

// statusPattern recovers the HTTP status from errors go-openai builds for
// non-JSON error bodies, e.g. a 413 page from a proxy.
var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	config config.OpenAIConfig
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, cfg config.OpenAIConfig, logger *zap.Logger) *RemoteTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteTranscriber{
		client: client,
		config: cfg,
		logger: logger.Named("openai"),
	}
}

// Name identifies the provider and model
func (rt *RemoteTranscriber) Name() string {
	return "OpenAI " + rt.config.Model
}

// Transcript streams the file to the OpenAI transcription endpoint and
// returns plain text. Failures come back classified; nothing is retried.
func (rt *RemoteTranscriber) Transcript(ctx context.Context, inputFilePath string) (string, error) {
	f, err := os.Open(inputFilePath)
	if err != nil {
		return "", apperrors.ClassifyStorage(err, "failed to open audio file")
	}
	defer f.Close()

	rt.logger.Info("Sending file for transcription",
		zap.String("file", filepath.Base(inputFilePath)),
		zap.String("model", rt.config.Model),
		zap.String("language", rt.config.Language))

	req := openai.AudioRequest{
		Model:       rt.config.Model,
		FilePath:    filepath.Base(inputFilePath),
		Reader:      f,
		Language:    rt.config.Language,
		Temperature: rt.config.Temperature,
		Format:      openai.AudioResponseFormatText,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		classified := classifyError(err)
		rt.logger.Error("Transcription failed",
			zap.String("kind", string(apperrors.KindOf(classified))),
			zap.Error(err))
		return "", classified
	}

	text := strings.TrimSpace(resp.Text)
	rt.logger.Info("Transcription received", zap.Int("chars", len([]rune(text))))
	return text, nil
}

// classifyError maps go-openai failures onto the error kinds the HTTP layer
// understands. This is the only place that looks at go-openai error types.
func classifyError(err error) error {
	status, message, fromProvider := inspect(err)

	switch {
	case status == 429:
		return apperrors.Wrap(err, apperrors.KindRateLimitExceeded, "rate limit exceeded")
	case status == 401:
		return apperrors.Wrap(err, apperrors.KindInvalidCredential, "invalid API key")
	case status == 413:
		return apperrors.Wrap(err, apperrors.KindFileTooLarge, "file too large for provider")
	case fromProvider && strings.Contains(strings.ToLower(message), "audio"):
		return apperrors.Wrap(err, apperrors.KindUnsupportedFormat, "provider rejected the audio")
	default:
		return apperrors.Wrap(err, apperrors.KindProviderError, fmt.Sprintf("provider error: %s", message))
	}
}

// inspect extracts the HTTP status and message of a failed call. fromProvider
// is false for transport errors, whose text embeds the request URL
// (".../audio/transcriptions") and must not be matched against.
func inspect(err error) (status int, message string, fromProvider bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, apiErr.Message, true
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		message = reqErr.HTTPStatus
		if reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
		return reqErr.HTTPStatusCode, message, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return 0, urlErr.Err.Error(), false
	}

	message = err.Error()
	if m := statusPattern.FindStringSubmatch(message); m != nil {
		status, _ = strconv.Atoi(m[1])
		return status, message, true
	}
	return 0, message, false
}

package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"hy-whisper/internal/api/dto"
	"hy-whisper/internal/api/errors"
	"hy-whisper/internal/api/middleware"
	"hy-whisper/internal/app/api"
	"hy-whisper/internal/app/audio"
	apperrors "hy-whisper/internal/app/errors"
	"hy-whisper/internal/app/metrics"
	"hy-whisper/internal/app/storage/scratch"
	"hy-whisper/internal/config"
)

const (
	// AudioField is the only multipart field accepted as a file
	AudioField = "audio"

	// multipartOverhead is the slack on top of MaxFileSize allowed for
	// boundaries, part headers and ordinary form fields.
	multipartOverhead = 1 << 20
)

// State is a step of a single transcription request
type State int

const (
	StateReceived State = iota
	StateValidated
	StateStored
	StateTranscribing
	StateCompleted
	StateRejected
	StateFailed
)

var stateNames = map[State]string{
	StateReceived:     "received",
	StateValidated:    "validated",
	StateStored:       "stored",
	StateTranscribing: "transcribing",
	StateCompleted:    "completed",
	StateRejected:     "rejected",
	StateFailed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRejected || s == StateFailed
}

// TranscriptionDeps are the collaborators of TranscriptionHandler. Primary is
// nil when no provider credential is configured.
type TranscriptionDeps struct {
	Config    config.Config
	Primary   api.Transcriber
	Fallback  api.Transcriber
	Scratch   *scratch.Manager
	Validator *audio.Validator
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
}

// TranscriptionHandler runs the upload, validate, relay and cleanup pipeline
// behind POST /api/transcribe.
type TranscriptionHandler struct {
	cfg       config.Config
	primary   api.Transcriber
	fallback  api.Transcriber
	scratch   *scratch.Manager
	validator *audio.Validator
	metrics   *metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(deps TranscriptionDeps) *TranscriptionHandler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRecorder(nil)
	}
	return &TranscriptionHandler{
		cfg:       deps.Config,
		primary:   deps.Primary,
		fallback:  deps.Fallback,
		scratch:   deps.Scratch,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		logger:    deps.Logger.Named("transcribe"),
		now:       time.Now,
	}
}

// transcriptionRun is the per-request state
type transcriptionRun struct {
	state     State
	started   time.Time
	handle    *scratch.Handle
	mediaType string
	service   string
}

// moveTo advances the run unless it already reached a terminal state.
func (r *transcriptionRun) moveTo(next State) bool {
	if r.state.Terminal() {
		return false
	}
	r.state = next
	return true
}

// Transcribe handles POST /api/transcribe
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	run := &transcriptionRun{state: StateReceived, started: h.now()}
	defer func() { h.scratch.Release(run.handle) }()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxFileSize+multipartOverhead)

	if apiErr, cause := h.receive(c, run); apiErr != nil {
		h.fail(c, run, apiErr, cause)
		return
	}

	logger := h.logger.With(
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.String("filename", run.handle.OriginalName),
	)
	logger.Info("Received file",
		zap.String("size", formatMB(run.handle.Size)),
		zap.String("mimetype", run.mediaType),
		zap.String("container", audio.DetectContainer(run.handle.Path)),
		zap.String("path", run.handle.Path))

	size, err := h.scratch.Size(run.handle)
	if err != nil {
		h.fail(c, run, errors.FromUnexpected(err).WithTimestamp(h.now()), err)
		return
	}
	if size > h.cfg.MaxFileSize {
		logger.Warn("File too large", zap.String("size", formatMB(size)))
		h.fail(c, run, errors.NewFileTooLargeError(h.cfg.MaxFileSizeHuman()), nil)
		return
	}

	usePrimary := h.primary != nil
	transcriber := h.fallback
	if usePrimary {
		transcriber = h.primary
	} else {
		logger.Warn("OpenAI API key not configured, using demo transcriber")
	}
	run.service = transcriber.Name()
	run.moveTo(StateTranscribing)

	// The provider call outlives a disconnected client; cleanup still happens
	// once it returns.
	text, err := transcriber.Transcript(context.WithoutCancel(c.Request.Context()), run.handle.Path)
	if err != nil {
		logger.Error("Transcription failed", zap.String("service", run.service), zap.Error(err))
		if usePrimary {
			h.fail(c, run, errors.FromProvider(err), err)
		} else {
			h.fail(c, run, errors.FromFallback(err), err)
		}
		return
	}

	h.scratch.Release(run.handle)
	logger.Debug("Temporary file removed", zap.String("file", run.handle.Name()))

	elapsed := h.now().Sub(run.started)
	run.moveTo(StateCompleted)
	h.metrics.RecordSuccess(run.service, elapsed, run.handle.Size)
	logger.Info("Transcription completed",
		zap.String("service", run.service),
		zap.Duration("elapsed", elapsed))

	c.JSON(http.StatusOK, dto.TranscriptionResponse{
		Text:           text,
		Filename:       run.handle.OriginalName,
		Size:           run.handle.Size,
		Service:        run.service,
		ProcessingTime: elapsed.Milliseconds(),
	})
}

// receive walks the multipart body, validates the audio part and stores it.
// On success run.handle is set and run is in StateStored.
func (h *TranscriptionHandler) receive(c *gin.Context, run *transcriptionRun) (*errors.APIError, error) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		if stderrors.Is(err, http.ErrNotMultipart) || stderrors.Is(err, http.ErrMissingBoundary) {
			return errors.NewNoFileError(), err
		}
		return h.uploadError(err), err
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return h.uploadError(err), err
		}

		apiErr, cause := h.receivePart(part, run)
		_ = part.Close()
		if apiErr != nil {
			return apiErr, cause
		}
	}

	if run.handle == nil {
		return errors.NewNoFileError(), nil
	}
	return nil, nil
}

func (h *TranscriptionHandler) receivePart(part *multipart.Part, run *transcriptionRun) (*errors.APIError, error) {
	// Ordinary form fields are ignored
	if part.FileName() == "" {
		return nil, nil
	}
	if part.FormName() != AudioField {
		return errors.NewBadRequestError(errors.MsgUnexpectedField), nil
	}
	if run.handle != nil {
		return errors.NewBadRequestError(errors.MsgTooManyFiles), nil
	}

	mediaType := part.Header.Get("Content-Type")
	if err := h.validator.Validate(mediaType, part.FileName()); err != nil {
		h.logger.Warn("Rejected upload",
			zap.String("filename", part.FileName()),
			zap.String("mimetype", mediaType))
		return errors.FromUpload(err, h.cfg.MaxFileSizeHuman()), err
	}
	run.moveTo(StateValidated)

	handle, err := h.scratch.Store(part, part.FileName())
	if err != nil {
		if isBodyTooLarge(err) {
			return errors.NewFileTooLargeError(h.cfg.MaxFileSizeHuman()), err
		}
		if apperrors.KindOf(err) == apperrors.KindFileTooLarge {
			return errors.FromUpload(err, h.cfg.MaxFileSizeHuman()), err
		}
		return errors.FromUnexpected(err).WithTimestamp(h.now()), err
	}

	run.handle = handle
	run.mediaType = mediaType
	run.moveTo(StateStored)
	return nil, nil
}

// uploadError maps a failure of the multipart reader itself.
func (h *TranscriptionHandler) uploadError(err error) *errors.APIError {
	if isBodyTooLarge(err) {
		return errors.NewFileTooLargeError(h.cfg.MaxFileSizeHuman())
	}
	return errors.NewBadRequestError(fmt.Sprintf(errors.MsgUploadFailed, err.Error()))
}

// fail releases the scratch file, moves the run to its terminal state and
// writes the error response.
func (h *TranscriptionHandler) fail(c *gin.Context, run *transcriptionRun, apiErr *errors.APIError, cause error) {
	h.scratch.Release(run.handle)

	outcome, next := metrics.OutcomeRejected, StateRejected
	if apiErr.HTTPStatus() >= http.StatusInternalServerError {
		outcome, next = metrics.OutcomeFailed, StateFailed
		apiErr.WithDetails(cause, !h.cfg.IsProduction())
	}
	run.moveTo(next)

	kind := string(apiErr.Kind)
	if kind == "" {
		kind = "invalid_upload"
	}
	h.metrics.RecordFailure(run.service, outcome, kind)

	h.logger.Info("Request finished",
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Stringer("state", run.state),
		zap.Int("status", apiErr.HTTPStatus()),
		zap.String("error", apiErr.Message))

	middleware.HandleError(c, apiErr)
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return stderrors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large")
}

func formatMB(size int64) string {
	return strconv.FormatFloat(float64(size)/(1024*1024), 'f', 2, 64) + " MB"
}

// Package xhsnote fetches Xiaohongshu notes and normalizes them into a
// stable shape.
package xhsnote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/longkey1/xhsnote/internal/logger"
	"github.com/longkey1/xhsnote/internal/tikhub"
)

// successCode is the application-level success value of the upstream
// "code" field. It is unrelated to the HTTP status.
const successCode = 200

// Upstream retrieves the raw response body for a note ID
type Upstream interface {
	FetchFeedNotes(ctx context.Context, noteID string) ([]byte, error)
}

// Recorder observes fetch outcomes. kind is empty on success.
type Recorder interface {
	RecordFetch(status, kind string, duration time.Duration)
}

// Fetcher resolves, fetches and normalizes notes. It holds no per-call
// state and is safe for concurrent use.
type Fetcher struct {
	upstream Upstream
	logger   *zap.Logger
	recorder Recorder
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithFetcherLogger sets the logger
func WithFetcherLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) FetcherOption {
	return func(f *Fetcher) {
		f.recorder = r
	}
}

// NewFetcher creates a new Fetcher backed by upstream
func NewFetcher(upstream Upstream, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		upstream: upstream,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchNote resolves the request to a note ID, fetches it and returns the
// normalized result. It never returns an error or panics: every failure is
// reported as an error envelope.
func (f *Fetcher) FetchNote(ctx context.Context, req FetchRequest) (result Result) {
	start := time.Now()
	log := f.logger.With(zap.String(logger.FieldRequestID, uuid.NewString()))

	defer func() {
		if r := recover(); r != nil {
			err := newInternalError(fmt.Errorf("%v", r))
			log.Error("fetch panicked", zap.Any("panic", r))
			result = errorResult(err)
		}
		f.record(result, time.Since(start))
	}()

	notes, err := f.fetch(ctx, req, log)
	if err != nil {
		e := classify(err)
		log.Info("fetch failed",
			zap.String(logger.FieldKind, e.Kind.String()),
			zap.String(logger.FieldMessage, e.Message),
			zap.NamedError(logger.FieldCause, e.Cause),
			zap.Duration(logger.FieldDuration, time.Since(start)),
		)
		return errorResult(e)
	}

	log.Info("fetch succeeded",
		zap.Int(logger.FieldTotal, len(notes)),
		zap.Duration(logger.FieldDuration, time.Since(start)),
	)
	return successResult(notes)
}

func (f *Fetcher) fetch(ctx context.Context, req FetchRequest, log *zap.Logger) ([]NormalizedNote, error) {
	noteID, err := ResolveIdentifier(req)
	if err != nil {
		return nil, err
	}
	log.Debug("identifier resolved", zap.String(logger.FieldNoteID, noteID))

	body, err := f.fetchRaw(ctx, noteID)
	if err != nil {
		return nil, err
	}

	raw, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	return Normalize(raw), nil
}

// fetchRaw issues the single upstream call and classifies transport failures
func (f *Fetcher) fetchRaw(ctx context.Context, noteID string) ([]byte, error) {
	if f.upstream == nil {
		return nil, newInternalError(errors.New("no upstream configured"))
	}
	body, err := f.upstream.FetchFeedNotes(ctx, noteID)
	if err != nil {
		if errors.Is(err, tikhub.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newTimeoutError(err)
		}
		return nil, newNetworkError(err)
	}
	return body, nil
}

type envelope struct {
	Code    json.RawMessage `json:"code"`
	Message OptString       `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type envelopeData struct {
	NoteList []RawNote `json:"note_list"`
}

// DecodeEnvelope parses an upstream response body and returns its note list
func DecodeEnvelope(body []byte) ([]RawNote, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, newDecodeError(errors.Wrap(err, "failed to unmarshal response"))
	}

	if !isSuccessCode(env.Code) {
		if env.Message.Valid {
			return nil, newUpstreamError(&env.Message.Value)
		}
		return nil, newUpstreamError(nil)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '{' {
		return nil, newNoDataError()
	}
	var d envelopeData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, newDecodeError(errors.Wrap(err, "failed to unmarshal note_list"))
	}
	if len(d.NoteList) == 0 {
		return nil, newNoDataError()
	}
	return d.NoteList, nil
}

// isSuccessCode reports whether the raw "code" value is the number 200.
// A string "200" is not a success.
func isSuccessCode(raw json.RawMessage) bool {
	var code float64
	if err := json.Unmarshal(raw, &code); err != nil {
		return false
	}
	return code == successCode
}

func (f *Fetcher) record(result Result, d time.Duration) {
	if f.recorder == nil {
		return
	}
	kind := ""
	if result.Err != nil {
		kind = result.Err.Kind.String()
	}
	f.recorder.RecordFetch(result.Status, kind, d)
}

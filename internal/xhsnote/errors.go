package xhsnote

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a fetch failed
type Kind int

const (
	KindInternal Kind = iota
	KindMissingParameter
	KindExtraction
	KindTimeout
	KindNetwork
	KindDecode
	KindUpstream
	KindNoData
)

// String returns the label used in logs and metrics
func (k Kind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing_parameter"
	case KindExtraction:
		return "extraction"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindUpstream:
		return "upstream"
	case KindNoData:
		return "no_data"
	default:
		return "internal"
	}
}

const (
	msgMissingParameter = "missing parameter: provide note_id or share_url"
	msgExtraction       = "extraction failed: could not extract note id from share url"
	msgTimeout          = "request timed out, please retry later"
	msgDecode           = "failed to decode response data"
	msgUpstreamDefault  = "request failed"
	msgNoData           = "no data found"
)

// Error is a classified fetch failure. Message is what callers see in the
// error envelope.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf reports the Kind of err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newMissingParameterError() *Error {
	return &Error{Kind: KindMissingParameter, Message: msgMissingParameter}
}

func newExtractionError(shareURL string) *Error {
	return &Error{
		Kind:    KindExtraction,
		Message: msgExtraction,
		Cause:   errors.Errorf("no note id in %q", shareURL),
	}
}

func newTimeoutError(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: msgTimeout, Cause: cause}
}

func newNetworkError(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("network request failed: %v", cause),
		Cause:   cause,
	}
}

func newDecodeError(cause error) *Error {
	return &Error{Kind: KindDecode, Message: msgDecode, Cause: cause}
}

func newUpstreamError(message *string) *Error {
	msg := msgUpstreamDefault
	if message != nil {
		msg = *message
	}
	return &Error{Kind: KindUpstream, Message: msg}
}

func newNoDataError() *Error {
	return &Error{Kind: KindNoData, Message: msgNoData}
}

func newInternalError(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("processing failed: %v", cause),
		Cause:   cause,
	}
}

// classify converts any error into a classified *Error. Errors that are
// already classified are returned as-is.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newInternalError(err)
}

package errors

import (
	"errors"
)

var (
	// ErrIO wraps every failure of the underlying stream. The original error is
	// joined, so both errors.Is(err, ErrIO) and errors.Is(err, cause) hold.
	ErrIO           = errors.New("stream i/o failure")
	ErrStreamClosed = errors.New("stream closed by peer")

	ErrMalformedStatusLine = errors.New("malformed status line")
	ErrMalformedHeader     = errors.New("malformed header")
	ErrMalformedChunkSize  = errors.New("malformed chunk size")
	ErrMalformedChunk      = errors.New("chunk data is not terminated by CRLF")

	ErrLineTooLong      = errors.New("line exceeds the limit")
	ErrPreambleTooLarge = errors.New("response status line and headers are too large")
	ErrBodyTooLarge     = errors.New("response body is too large")

	ErrResponseNotStarted = errors.New("response body requested before the response began")
	ErrAlreadyExhausted   = errors.New("response body is already exhausted")

	ErrUnknownMethod     = errors.New("request method is unknown")
	ErrShortRequestBody  = errors.New("request body is shorter than declared")
	ErrRequestNotStarted = errors.New("request line must be written first")
)

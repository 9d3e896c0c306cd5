package body

import (
	"fmt"

	"github.com/indigo-web/h1client/client/internal/parser/http1"
	"github.com/indigo-web/h1client/config"
	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/http/headers"
)

var crlf = []byte("\r\n")

// Source is where the decoder takes bytes from. It's satisfied by the rolling buffer.
type Source interface {
	ReadLine(delim []byte, limit int) ([]byte, error)
	ReadBytes(dest []byte) (int, error)
}

// state is a closed sum type. Every state-dependent operation must switch over all the
// variants below.
type state interface {
	decoderState()
}

type (
	awaitingRequest struct{}

	fixedLength struct {
		total, consumed uint64
	}

	chunked struct {
		// size and consumed describe the current chunk. They're meaningful only if
		// sizeKnown is set, otherwise the next chunk size line must be read first.
		size, consumed uint64
		sizeKnown      bool
		// received counts all the chunks' data, used to enforce the body size limit.
		received uint64
	}

	exhausted struct{}
)

func (awaitingRequest) decoderState() {}
func (*fixedLength) decoderState()    {}
func (*chunked) decoderState()        {}
func (exhausted) decoderState()       {}

// Decoder reads exactly the response body, hiding whether it's framed by Content-Length
// or chunked transfer coding. It's owned by a single caller, no synchronization is done.
type Decoder struct {
	src      Source
	state    state
	fixed    fixedLength
	chunked  chunked
	maxSize  uint64
	maxLine  int
	trailers []headers.Header
}

func NewDecoder(src Source, cfg *config.Config) *Decoder {
	return &Decoder{
		src:     src,
		state:   awaitingRequest{},
		maxSize: cfg.Body.MaxSize,
		maxLine: cfg.Headers.MaxLineSize,
	}
}

// Init selects the framing by the response headers. Chunked transfer coding takes
// precedence over Content-Length, which is ignored then. Having neither means the
// response has no body.
func (d *Decoder) Init(hdrs []headers.Header) error {
	d.trailers = d.trailers[:0]

	var (
		isChunked     bool
		hasLength     bool
		contentLength uint64
	)

	for _, h := range hdrs {
		switch h.Kind {
		case headers.TransferEncodingChunked:
			isChunked = true
		case headers.ContentLength:
			if hasLength && h.Length != contentLength {
				return fmt.Errorf("%w: conflicting Content-Length values", errors.ErrMalformedHeader)
			}

			hasLength, contentLength = true, h.Length
		}
	}

	switch {
	case isChunked:
		d.chunked = chunked{}
		d.state = &d.chunked
	case hasLength && contentLength > d.maxSize:
		d.state = exhausted{}
		return errors.ErrBodyTooLarge
	case hasLength && contentLength > 0:
		d.fixed = fixedLength{total: contentLength}
		d.state = &d.fixed
	default:
		d.state = exhausted{}
	}

	return nil
}

// InitEmpty marks the body as absent regardless of headers. This is the case for
// responses to HEAD requests, as well as for 1xx, 204 and 304 responses.
func (d *Decoder) InitEmpty() {
	d.trailers = d.trailers[:0]
	d.state = exhausted{}
}

// Reset brings the decoder back to its initial state.
func (d *Decoder) Reset() {
	d.trailers = d.trailers[:0]
	d.state = awaitingRequest{}
}

// Read copies next body bytes into dest. It may return fewer bytes than requested, so
// callers must loop until HasMore reports false, or, for chunked bodies, until 0 bytes
// are returned. A zero-length dest never changes the state nor fails.
func (d *Decoder) Read(dest []byte) (int, error) {
	if len(dest) == 0 {
		return 0, nil
	}

	switch s := d.state.(type) {
	case awaitingRequest:
		return 0, errors.ErrResponseNotStarted
	case exhausted:
		return 0, errors.ErrAlreadyExhausted
	case *fixedLength:
		return d.readFixed(s, dest)
	case *chunked:
		return d.readChunked(s, dest)
	default:
		panic(fmt.Sprintf("BUG: body decoder: unknown state %T", s))
	}
}

func (d *Decoder) readFixed(s *fixedLength, dest []byte) (int, error) {
	want := min(uint64(len(dest)), s.total-s.consumed)
	n, err := d.src.ReadBytes(dest[:want])
	s.consumed += uint64(n)
	if s.consumed == s.total {
		d.state = exhausted{}
	}

	return n, err
}

func (d *Decoder) readChunked(s *chunked, dest []byte) (int, error) {
	if !s.sizeKnown {
		line, err := d.src.ReadLine(crlf, d.maxLine)
		if err != nil {
			return 0, err
		}

		size, err := http1.ParseChunkSize(line)
		if err != nil {
			return 0, err
		}

		if size == 0 {
			if err = d.readTrailers(); err != nil {
				return 0, err
			}

			d.state = exhausted{}
			return 0, nil
		}

		if size > d.maxSize-s.received {
			return 0, errors.ErrBodyTooLarge
		}

		s.size, s.consumed, s.sizeKnown = size, 0, true
	}

	want := min(uint64(len(dest)), s.size-s.consumed)
	n, err := d.src.ReadBytes(dest[:want])
	s.consumed += uint64(n)
	s.received += uint64(n)
	if err != nil {
		return n, err
	}

	if s.consumed == s.size {
		// every chunk's data is terminated by CRLF, which must be consumed before the
		// next chunk size line can be read
		terminator, err := d.src.ReadLine(crlf, d.maxLine)
		if err != nil {
			return n, err
		}

		if len(terminator) != 0 {
			return n, errors.ErrMalformedChunk
		}

		s.sizeKnown = false
	}

	return n, nil
}

// readTrailers consumes the trailer section up to the blank line, that follows the
// last chunk.
func (d *Decoder) readTrailers() error {
	for {
		line, err := d.src.ReadLine(crlf, d.maxLine)
		if err != nil {
			return err
		}

		if len(line) == 0 {
			return nil
		}

		field, err := http1.ParseField(line)
		if err != nil {
			return err
		}

		d.trailers = append(d.trailers, field)
	}
}

// HasMore tells whether there might be more body bytes. Chunked bodies can't prove their
// exhaustion without reading the next chunk size line, so this is always true for them
// until the last chunk is read.
func (d *Decoder) HasMore() bool {
	switch s := d.state.(type) {
	case awaitingRequest, exhausted:
		return false
	case *fixedLength:
		return s.consumed < s.total
	case *chunked:
		return true
	default:
		panic(fmt.Sprintf("BUG: body decoder: unknown state %T", s))
	}
}

// Trailers returns trailer fields, which followed the last chunk. They're available
// only after the body is exhausted.
func (d *Decoder) Trailers() []headers.Header {
	return d.trailers
}

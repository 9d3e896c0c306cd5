package http1

import (
	"fmt"
	"io"
	"math/bits"
	"strconv"
	"strings"

	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/http/headers"
	"github.com/indigo-web/h1client/http/method"
	"github.com/indigo-web/h1client/http/proto"
)

const crlf = "\r\n"

// chunkZeroTrailer terminates a chunked body with no trailers.
var chunkZeroTrailer = []byte("0\r\n\r\n")

// Writer is the sink a request is rendered into. It must write all the bytes or fail.
type Writer interface {
	Write(b []byte) error
}

// Renderer serializes requests. The request line and headers are accumulated and
// written at once, when the header section is ended or body bytes are going to be
// written.
type Renderer struct {
	writer Writer
	buff   []byte
	// bodyBuff is used to read request bodies into. It's reused between requests.
	bodyBuff []byte
	started  bool
}

func NewRenderer(writer Writer, buff, bodyBuff []byte) *Renderer {
	if len(bodyBuff) <= maxhex(len(bodyBuff))+2*len(crlf) {
		panic("BUG: http1 render: body buffer is too small")
	}

	return &Renderer{
		writer:   writer,
		buff:     buff[:0],
		bodyBuff: bodyBuff,
	}
}

// RequestLine starts a new request, dropping everything not yet written.
func (r *Renderer) RequestLine(m method.Method, target string) error {
	r.buff, r.started = r.buff[:0], false

	if m == method.Unknown || m > method.Count {
		return errors.ErrUnknownMethod
	}

	if len(target) == 0 {
		target = "/"
	}

	if strings.ContainsAny(target, " \t\r\n") {
		return fmt.Errorf("%w: request target %q contains whitespace", errors.ErrMalformedHeader, target)
	}

	r.buff = append(r.buff, m.String()...)
	r.buff = append(r.buff, ' ')
	r.buff = append(r.buff, target...)
	r.buff = append(r.buff, ' ')
	r.buff = append(r.buff, proto.HTTP11.String()...)
	r.buff = append(r.buff, crlf...)
	r.started = true

	return nil
}

// Header appends a single header field. Fields containing line breaks are rejected, as
// otherwise they'd be able to smuggle arbitrary fields into the request.
func (r *Renderer) Header(h headers.Header) error {
	if !r.started {
		return errors.ErrRequestNotStarted
	}

	if len(h.Name) == 0 || strings.ContainsAny(h.Name, ": \t\r\n") || strings.ContainsAny(h.Value, "\r\n") {
		return fmt.Errorf("%w: can't render %q", errors.ErrMalformedHeader, h.String())
	}

	r.buff = append(r.buff, h.Name...)
	r.buff = append(r.buff, ':', ' ')
	r.buff = append(r.buff, h.Value...)
	r.buff = append(r.buff, crlf...)

	return nil
}

func (r *Renderer) ContentLength(length int64) error {
	if !r.started {
		return errors.ErrRequestNotStarted
	}

	r.buff = append(r.buff, "Content-Length: "...)
	r.buff = strconv.AppendInt(r.buff, length, 10)
	r.buff = append(r.buff, crlf...)

	return nil
}

// HeadersEnd terminates the header section and flushes it.
func (r *Renderer) HeadersEnd() error {
	if !r.started {
		return errors.ErrRequestNotStarted
	}

	r.buff = append(r.buff, crlf...)
	return r.Flush()
}

// Raw writes the bytes as they are.
func (r *Renderer) Raw(b []byte) error {
	if err := r.Flush(); err != nil {
		return err
	}

	if len(b) == 0 {
		return nil
	}

	return r.writer.Write(b)
}

// Flush writes everything accumulated so far.
func (r *Renderer) Flush() error {
	if len(r.buff) == 0 {
		return nil
	}

	err := r.writer.Write(r.buff)
	r.buff = r.buff[:0]

	return err
}

// SizedBody writes exactly size bytes, read from the reader. A reader ending earlier
// results in errors.ErrShortRequestBody, and the connection is unusable after that.
func (r *Renderer) SizedBody(reader io.Reader, size int64) error {
	if err := r.Flush(); err != nil {
		return err
	}

	for size > 0 {
		n, err := reader.Read(r.bodyBuff[:min(int64(len(r.bodyBuff)), size)])
		if n > 0 {
			size -= int64(n)

			if err := r.writer.Write(r.bodyBuff[:n]); err != nil {
				return err
			}
		}

		switch err {
		case nil:
		case io.EOF:
			if size > 0 {
				return errors.ErrShortRequestBody
			}
		default:
			return fmt.Errorf("request body: %w", err)
		}
	}

	return nil
}

// ChunkedBody frames the reader's data into chunks, one per read, until the reader is
// exhausted. Each chunk is rendered in place: the hex length is put right before the
// data, so no additional copying is done.
func (r *Renderer) ChunkedBody(reader io.Reader) error {
	if err := r.Flush(); err != nil {
		return err
	}

	var (
		hexValueOffset = maxhex(len(r.bodyBuff))
		buffOffset     = hexValueOffset + len(crlf)
	)

	for {
		n, err := reader.Read(r.bodyBuff[buffOffset : len(r.bodyBuff)-len(crlf)])
		if n > 0 {
			hex := strconv.AppendUint(r.bodyBuff[:0], uint64(n), 16)
			blankSpace := hexValueOffset - len(hex)
			copy(r.bodyBuff[blankSpace:], hex)
			copy(r.bodyBuff[hexValueOffset:], crlf)
			copy(r.bodyBuff[buffOffset+n:], crlf)

			if err := r.writer.Write(r.bodyBuff[blankSpace : buffOffset+n+len(crlf)]); err != nil {
				return err
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return r.writer.Write(chunkZeroTrailer)
		default:
			return fmt.Errorf("request body: %w", err)
		}
	}
}

// maxhex returns the number of hex digits needed to represent n.
func maxhex(n int) int {
	return (bits.Len64(uint64(n))-1)>>2 + 1
}

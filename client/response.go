package client

import (
	"io"
	"slices"

	"github.com/indigo-web/h1client/http/headers"
	"github.com/indigo-web/h1client/http/status"
	"github.com/indigo-web/iter"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// Response is a received response. Its body is read lazily from the connection, so it
// must be consumed before the next request is sent.
type Response struct {
	Status  status.Line
	Headers []headers.Header
	// Body is the response body. It returns io.EOF once the body is over.
	Body io.Reader
	ctx  *Context
}

func newResponse(ctx *Context) *Response {
	return &Response{
		Status:  ctx.status,
		Headers: slices.Clone(ctx.headers),
		Body:    bodyReader{ctx},
		ctx:     ctx,
	}
}

// Header returns the first value of the header. The lookup is case-insensitive.
func (r *Response) Header(name string) (string, bool) {
	return headers.Value(r.Headers, name)
}

// Iter returns an iterator over the response headers, in order of their appearance.
func (r *Response) Iter() iter.Iterator[headers.Header] {
	return iter.Slice(r.Headers)
}

// ContentType returns the Content-Type value, if any.
func (r *Response) ContentType() string {
	h, _ := headers.Find(r.Headers, headers.ContentType)
	return h.Value
}

// Bytes reads the whole remaining body.
func (r *Response) Bytes() ([]byte, error) {
	var buff []byte
	if h, found := headers.Find(r.Headers, headers.ContentLength); found && h.Length <= maxPrealloc {
		buff = make([]byte, 0, h.Length)
	}

	for {
		if len(buff) == cap(buff) {
			buff = append(buff, 0)[:len(buff)]
		}

		n, err := r.Body.Read(buff[len(buff):cap(buff)])
		buff = buff[:len(buff)+n]
		switch err {
		case nil:
		case io.EOF:
			return buff, nil
		default:
			return nil, err
		}
	}
}

// maxPrealloc bounds the body buffer preallocation trusting the Content-Length value.
const maxPrealloc = 1 << 20

// String returns the whole remaining body as a string.
func (r *Response) String() (string, error) {
	data, err := r.Bytes()
	return uf.B2S(data), err
}

// JSON reads the whole remaining body and unmarshals it into the model.
func (r *Response) JSON(model any) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}

	iterator := json.ConfigDefault.BorrowIterator(data)
	iterator.ReadVal(model)
	err = iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

// Discard reads the remaining body out.
func (r *Response) Discard() error {
	_, err := io.Copy(io.Discard, r.Body)
	return err
}

// Trailers returns trailer fields of a chunked body. They're available only after the
// body is fully read.
func (r *Response) Trailers() []headers.Header {
	return r.ctx.Trailers()
}

type bodyReader struct {
	ctx *Context
}

// Read implements io.Reader. Unlike Context.ReadBodyChunk, it never returns 0 bytes
// without an error, reporting the end of the body with io.EOF instead.
func (b bodyReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for b.ctx.HasMoreBody() {
		n, err := b.ctx.ReadBodyChunk(p)
		if err != nil {
			return n, err
		}

		if n > 0 {
			return n, nil
		}
	}

	return 0, io.EOF
}

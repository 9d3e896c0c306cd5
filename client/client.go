package client

import (
	"io"
	"iter"

	"github.com/indigo-web/h1client/client/internal/body"
	"github.com/indigo-web/h1client/client/internal/parser/http1"
	render "github.com/indigo-web/h1client/client/internal/render/http1"
	"github.com/indigo-web/h1client/config"
	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/http/headers"
	"github.com/indigo-web/h1client/http/method"
	"github.com/indigo-web/h1client/http/status"
	"github.com/indigo-web/h1client/internal/tcp"
)

var preambleDelim = []byte("\r\n\r\n")

// Context is a client session over a single connection. Requests and responses are
// strictly sequential: a response must be fully read before the next one begins. It
// mustn't be used concurrently.
//
// Any error returned by the response side leaves the connection in an undefined state,
// so it must be closed then.
type Context struct {
	cfg      *config.Config
	client   *tcp.Client
	renderer *render.Renderer
	decoder  *body.Decoder
	host     string
	// method of the last request. Responses to HEAD requests never have a body.
	method   method.Method
	preamble []byte
	status   status.Line
	headers  []headers.Header
	started  bool
}

// Dial connects to the addr over TCP. The addr is also used as the Host header value,
// unless it's set explicitly.
func Dial(addr string, cfg *config.Config) (*Context, error) {
	conn, err := tcp.Dial(addr, cfg.NET)
	if err != nil {
		return nil, err
	}

	ctx := New(conn, cfg)
	ctx.host = addr

	return ctx, nil
}

// New wraps an already established stream. The stream is owned by the Context since.
func New(stream io.ReadWriter, cfg *config.Config) *Context {
	client := tcp.NewClient(stream, cfg.NET, make([]byte, cfg.NET.ReadBufferSize))

	return &Context{
		cfg:      cfg,
		client:   client,
		renderer: render.NewRenderer(client, make([]byte, 0, 512), make([]byte, cfg.NET.WriteBufferSize)),
		decoder:  body.NewDecoder(client, cfg),
	}
}

// BeginRequest writes the request line. The request is always of HTTP/1.1.
func (c *Context) BeginRequest(m method.Method, target string) error {
	c.method = m
	return c.renderer.RequestLine(m, target)
}

func (c *Context) RequestHeader(h headers.Header) error {
	return c.renderer.Header(h)
}

// RequestHeadersEnd terminates the header section and flushes the preamble.
func (c *Context) RequestHeadersEnd() error {
	return c.renderer.HeadersEnd()
}

// RequestBodyChunk writes raw body bytes. Framing them is up to the caller.
func (c *Context) RequestBodyChunk(b []byte) error {
	return c.renderer.Raw(b)
}

// Send writes the whole request. Bodies of known length are sent with Content-Length,
// otherwise chunked transfer coding is used.
func (c *Context) Send(req *Request) error {
	if err := req.Err(); err != nil {
		return err
	}

	if err := c.BeginRequest(req.Method, req.Target()); err != nil {
		return err
	}

	if len(c.host) > 0 && !req.hasHeader("Host") {
		if err := c.RequestHeader(headers.NewHost(c.host)); err != nil {
			return err
		}
	}

	for _, h := range req.Headers {
		switch h.Kind {
		case headers.ContentLength, headers.TransferEncodingChunked:
			continue
		}

		if err := c.RequestHeader(h); err != nil {
			return err
		}
	}

	switch {
	case req.Body == nil:
		if expectsBody(req.Method) {
			if err := c.renderer.ContentLength(0); err != nil {
				return err
			}
		}

		return c.RequestHeadersEnd()
	case req.ContentLength >= 0:
		if err := c.renderer.ContentLength(req.ContentLength); err != nil {
			return err
		}

		if err := c.RequestHeadersEnd(); err != nil {
			return err
		}

		return c.renderer.SizedBody(req.Body, req.ContentLength)
	default:
		if err := c.RequestHeader(headers.NewChunked()); err != nil {
			return err
		}

		if err := c.RequestHeadersEnd(); err != nil {
			return err
		}

		return c.renderer.ChunkedBody(req.Body)
	}
}

// expectsBody tells whether servers might require a framing header even for empty bodies.
func expectsBody(m method.Method) bool {
	return m == method.POST || m == method.PUT || m == method.PATCH
}

// ResponseBegin reads the status line and headers of the next response and prepares
// the body for reading. Bytes read past the header section are kept for the body.
//
// Informational (1xx) responses are returned as any other, so the caller is expected
// to call ResponseBegin once more if it's interested in the final response.
func (c *Context) ResponseBegin() error {
	c.started = false
	c.decoder.Reset()
	c.status = status.Line{}
	c.headers = c.headers[:0]

	preamble, err := c.client.ReadLine(preambleDelim, c.cfg.Headers.MaxPreambleSize)
	switch err {
	case nil:
	case errors.ErrLineTooLong:
		return errors.ErrPreambleTooLarge
	default:
		return err
	}

	// the line points into the rolling buffer, which is going to be overwritten by the body
	c.preamble = append(c.preamble[:0], preamble...)
	if c.status, err = http1.ParseStatus(c.preamble); err != nil {
		return err
	}

	_, block := http1.SplitPreamble(c.preamble)
	for h, err := range http1.Headers(block) {
		if err != nil {
			return err
		}

		c.headers = append(c.headers, h)
	}

	if c.method == method.HEAD || c.status.Code.BodyForbidden() {
		c.decoder.InitEmpty()
	} else if err = c.decoder.Init(c.headers); err != nil {
		return err
	}

	c.started = true
	return nil
}

// Status returns the status line of the current response.
func (c *Context) Status() status.Line {
	return c.status
}

// ResponseHeaders iterates over header fields of the current response. The iterator
// is valid until the next ResponseBegin.
func (c *Context) ResponseHeaders() iter.Seq2[headers.Header, error] {
	if !c.started {
		return http1.Headers(nil)
	}

	_, block := http1.SplitPreamble(c.preamble)
	return http1.Headers(block)
}

// ReadBodyChunk reads the next piece of the response body. It may return fewer bytes
// than requested, including zero. The body is over when HasMoreBody reports false.
func (c *Context) ReadBodyChunk(dest []byte) (int, error) {
	return c.decoder.Read(dest)
}

func (c *Context) HasMoreBody() bool {
	return c.decoder.HasMore()
}

// Trailers returns the trailer fields of a chunked body, once it's fully read.
func (c *Context) Trailers() []headers.Header {
	return c.decoder.Trailers()
}

// Response wraps the current response. The body is still read from the connection.
func (c *Context) Response() (*Response, error) {
	if !c.started {
		return nil, errors.ErrResponseNotStarted
	}

	return newResponse(c), nil
}

// Do sends the request and begins the response.
func (c *Context) Do(req *Request) (*Response, error) {
	if err := c.Send(req); err != nil {
		return nil, err
	}

	if err := c.ResponseBegin(); err != nil {
		return nil, err
	}

	return c.Response()
}

// Close closes the underlying stream, if it's closable.
func (c *Context) Close() error {
	return c.client.Close()
}

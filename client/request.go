package client

import (
	"bytes"
	"io"
	"strings"

	"github.com/indigo-web/h1client/http/headers"
	"github.com/indigo-web/h1client/http/method"
	json "github.com/json-iterator/go"
)

// Request is a builder of an outgoing request. Framing headers (Content-Length and
// Transfer-Encoding) are set automatically by Context.Send, depending on the body, so
// setting them manually has no effect.
type Request struct {
	Method  method.Method
	Path    string
	Query   Query
	Headers []headers.Header
	Body    io.Reader
	// ContentLength is the size of Body. Negative values mean the size is unknown, so
	// the body is sent using chunked transfer coding.
	ContentLength int64
	err           error
}

func NewRequest(m method.Method, path string) *Request {
	return &Request{
		Method: m,
		Path:   path,
		Query:  NewQuery(),
	}
}

func (r *Request) WithMethod(m method.Method) *Request {
	r.Method = m
	return r
}

func (r *Request) WithPath(path string) *Request {
	r.Path = path
	return r
}

func (r *Request) WithQuery(key string, values ...string) *Request {
	r.Query.WithValue(key, values...)
	return r
}

// WithHeader adds a header. Values of known headers are interpreted, so a malformed one
// is reported by Context.Send.
func (r *Request) WithHeader(name, value string) *Request {
	h, err := headers.FromNameValue(name, value)
	if err != nil {
		return r.withError(err)
	}

	r.Headers = append(r.Headers, h)
	return r
}

func (r *Request) WithHost(host string) *Request {
	r.Headers = append(r.Headers, headers.NewHost(host))
	return r
}

func (r *Request) WithContentType(mediaType string) *Request {
	r.Headers = append(r.Headers, headers.NewContentType(mediaType))
	return r
}

// WithBody sets a body of known length.
func (r *Request) WithBody(body []byte) *Request {
	r.Body, r.ContentLength = bytes.NewReader(body), int64(len(body))
	return r
}

func (r *Request) WithBodyString(body string) *Request {
	r.Body, r.ContentLength = strings.NewReader(body), int64(len(body))
	return r
}

// WithBodyReader sets a body, which is read from the reader. If the size is negative,
// the body is sent in chunks.
func (r *Request) WithBodyReader(body io.Reader, size int64) *Request {
	r.Body, r.ContentLength = body, size
	return r
}

// TryJSON marshals the model into the body and sets the Content-Type.
func (r *Request) TryJSON(model any) (*Request, error) {
	buff := new(bytes.Buffer)
	stream := json.ConfigDefault.BorrowStream(buff)
	stream.WriteVal(model)
	err := stream.Flush()
	if err == nil {
		err = stream.Error
	}
	json.ConfigDefault.ReturnStream(stream)

	if err != nil {
		return r, err
	}

	return r.WithContentType("application/json").WithBody(buff.Bytes()), nil
}

// JSON does the same as TryJSON does, except the error is reported by Context.Send.
func (r *Request) JSON(model any) *Request {
	req, err := r.TryJSON(model)
	if err != nil {
		return r.withError(err)
	}

	return req
}

// Target returns the request target as it's written in the request line.
func (r *Request) Target() string {
	path := r.Path
	if len(path) == 0 {
		path = "/"
	}

	if query := r.Query.Encode(); len(query) > 0 {
		return path + "?" + query
	}

	return path
}

// Err returns the first error occurred while building the request.
func (r *Request) Err() error {
	return r.err
}

// hasHeader looks the header up by name, as a value that wasn't recognized leaves
// the header Custom.
func (r *Request) hasHeader(name string) bool {
	_, found := headers.Value(r.Headers, name)
	return found
}

func (r *Request) withError(err error) *Request {
	if r.err == nil {
		r.err = err
	}

	return r
}

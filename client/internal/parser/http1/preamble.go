package http1

import (
	"bytes"
	"fmt"
	"iter"
	"strconv"

	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/http/headers"
	"github.com/indigo-web/h1client/http/proto"
	"github.com/indigo-web/h1client/http/status"
	"github.com/indigo-web/utils/uf"
)

var (
	crlf  = []byte("\r\n")
	colon = []byte(":")
)

// SplitPreamble separates the status line from the header block. The preamble is expected
// without the terminating blank line.
func SplitPreamble(preamble []byte) (statusLine, headerBlock []byte) {
	statusLine, headerBlock, _ = bytes.Cut(preamble, crlf)
	return statusLine, headerBlock
}

// ParseStatus parses the first line of the preamble. The version token must belong to
// HTTP/1.x and the code must be numeric, the reason phrase is optional.
func ParseStatus(preamble []byte) (status.Line, error) {
	line, _ := SplitPreamble(preamble)
	version, rest := nextField(line)
	if !proto.IsHTTP1(uf.B2S(version)) {
		return status.Line{}, fmt.Errorf("%w: unacceptable HTTP version %q", errors.ErrMalformedStatusLine, version)
	}

	code, rest := nextField(rest)
	if len(code) == 0 {
		return status.Line{}, fmt.Errorf("%w: no status code", errors.ErrMalformedStatusLine)
	}

	parsed, err := strconv.ParseUint(uf.B2S(code), 10, 16)
	if err != nil {
		return status.Line{}, fmt.Errorf("%w: status code %q is not a number", errors.ErrMalformedStatusLine, code)
	}

	return status.Line{
		Version: string(version),
		Proto:   proto.FromBytes(version),
		Code:    status.Code(parsed),
		Reason:  string(bytes.TrimRight(rest, " \t")),
	}, nil
}

// nextField cuts off the next whitespace-separated field.
func nextField(b []byte) (field, rest []byte) {
	b = bytes.TrimLeft(b, " \t")
	if i := bytes.IndexAny(b, " \t"); i != -1 {
		return b[:i], bytes.TrimLeft(b[i:], " \t")
	}

	return b, nil
}

// Headers lazily iterates over the header block. The sequence can be ranged over any
// number of times. A malformed header field stops the iteration, yielding the error.
func Headers(block []byte) iter.Seq2[headers.Header, error] {
	return func(yield func(headers.Header, error) bool) {
		for rest := block; len(rest) > 0; {
			var line []byte
			line, rest, _ = bytes.Cut(rest, crlf)

			h, err := ParseField(line)
			if !yield(h, err) || err != nil {
				return
			}
		}
	}
}

// ParseField splits a single field line on the first colon.
func ParseField(line []byte) (headers.Header, error) {
	name, value, found := bytes.Cut(line, colon)
	if !found {
		return headers.Header{}, fmt.Errorf("%w: no colon in %q", errors.ErrMalformedHeader, line)
	}

	return headers.FromNameValue(string(name), string(value))
}

// Collect drains the header iterator into a slice, failing on the first malformed header.
func Collect(seq iter.Seq2[headers.Header, error]) (hdrs []headers.Header, err error) {
	for h, err := range seq {
		if err != nil {
			return nil, err
		}

		hdrs = append(hdrs, h)
	}

	return hdrs, nil
}

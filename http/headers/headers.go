package headers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/utils/strcomp"
)

// Kind tags which of the variants a Header holds.
type Kind uint8

const (
	// Custom is any header that isn't interpreted. It's preserved for the caller as is.
	Custom Kind = iota
	ContentLength
	ContentType
	Date
	Host
	TransferEncodingChunked
)

// TimeFormat is the IMF-fixdate layout used by the Date header.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// obsolete date layouts, which recipients are still obliged to accept.
const (
	rfc850Format = "Monday, 02-Jan-06 15:04:05 GMT"
	ansicFormat  = "Mon Jan _2 15:04:05 2006"
)

// Header is a tagged union over the recognized header kinds. Only the fields, relevant
// to the Kind, are meaningful: Length for ContentLength, Time for Date. Name and Value
// are always set.
type Header struct {
	Kind   Kind
	Name   string
	Value  string
	Length uint64
	Time   time.Time
}

func NewCustom(name, value string) Header {
	return Header{Kind: Custom, Name: name, Value: value}
}

func NewContentLength(length uint64) Header {
	return Header{
		Kind:   ContentLength,
		Name:   "Content-Length",
		Value:  strconv.FormatUint(length, 10),
		Length: length,
	}
}

func NewContentType(mediaType string) Header {
	return Header{Kind: ContentType, Name: "Content-Type", Value: mediaType}
}

func NewDate(t time.Time) Header {
	return Header{Kind: Date, Name: "Date", Value: t.UTC().Format(TimeFormat), Time: t.UTC()}
}

func NewHost(host string) Header {
	return Header{Kind: Host, Name: "Host", Value: host}
}

func NewChunked() Header {
	return Header{Kind: TransferEncodingChunked, Name: "Transfer-Encoding", Value: "chunked"}
}

// FromNameValue recognizes the header by its name case-insensitively. Unrecognized names
// result in Custom headers. So do Date and Host values that can't be interpreted, as
// neither affects the message framing. A bad Content-Length value fails with
// errors.ErrMalformedHeader.
func FromNameValue(name, value string) (Header, error) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if len(name) == 0 || strings.ContainsAny(name, " \t") {
		return Header{}, fmt.Errorf("%w: bad field name %q", errors.ErrMalformedHeader, name)
	}

	switch {
	case strcomp.EqualFold(name, "content-length"):
		length, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return Header{}, fmt.Errorf("%w: bad content length %q", errors.ErrMalformedHeader, value)
		}

		return Header{Kind: ContentLength, Name: name, Value: value, Length: length}, nil
	case strcomp.EqualFold(name, "transfer-encoding"):
		if !isChunked(value) {
			// other codings aren't interpreted, the message has no defined framing then
			return NewCustom(name, value), nil
		}

		return Header{Kind: TransferEncodingChunked, Name: name, Value: value}, nil
	case strcomp.EqualFold(name, "content-type"):
		return Header{Kind: ContentType, Name: name, Value: value}, nil
	case strcomp.EqualFold(name, "date"):
		t, err := parseTime(value)
		if err != nil {
			return NewCustom(name, value), nil
		}

		return Header{Kind: Date, Name: name, Value: value, Time: t}, nil
	case strcomp.EqualFold(name, "host"):
		if len(value) == 0 || strings.ContainsAny(value, " \t/") {
			return NewCustom(name, value), nil
		}

		return Header{Kind: Host, Name: name, Value: value}, nil
	default:
		return NewCustom(name, value), nil
	}
}

// isChunked tells whether chunked is among the listed transfer codings.
func isChunked(value string) bool {
	for _, token := range strings.Split(value, ",") {
		if strcomp.EqualFold(strings.TrimSpace(token), "chunked") {
			return true
		}
	}

	return false
}

func parseTime(value string) (t time.Time, err error) {
	for _, layout := range []string{TimeFormat, rfc850Format, ansicFormat} {
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return t, err
}

// String renders the header as a field line, without the trailing CRLF.
func (h Header) String() string {
	return h.Name + ": " + h.Value
}

// Find returns the first header of the kind.
func Find(hdrs []Header, kind Kind) (Header, bool) {
	for _, h := range hdrs {
		if h.Kind == kind {
			return h, true
		}
	}

	return Header{}, false
}

// Values returns values of all the headers with the name, compared case-insensitively.
func Values(hdrs []Header, name string) (values []string) {
	for _, h := range hdrs {
		if strcomp.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}

	return values
}

// Value returns the first value of the header with the name.
func Value(hdrs []Header, name string) (string, bool) {
	for _, h := range hdrs {
		if strcomp.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}

	return "", false
}

package status

import (
	"github.com/indigo-web/h1client/http/proto"
)

type Code uint16

// The most common status codes. Any other uint16 value is a valid Code as well.
const (
	Continue           Code = 100
	SwitchingProtocols Code = 101

	OK        Code = 200
	Created   Code = 201
	Accepted  Code = 202
	NoContent Code = 204

	MovedPermanently  Code = 301
	Found             Code = 302
	NotModified       Code = 304
	TemporaryRedirect Code = 307
	PermanentRedirect Code = 308

	BadRequest       Code = 400
	Unauthorized     Code = 401
	Forbidden        Code = 403
	NotFound         Code = 404
	MethodNotAllowed Code = 405
	Teapot           Code = 418

	InternalServerError     Code = 500
	NotImplemented          Code = 501
	BadGateway              Code = 502
	ServiceUnavailable      Code = 503
	HTTPVersionNotSupported Code = 505
)

// Line is the parsed status line of a response. It's immutable once parsed.
type Line struct {
	// Version is the raw version token, e.g. HTTP/1.1
	Version string
	// Proto is Version, recognized. May be proto.Unknown for exotic minor versions.
	Proto  proto.Proto
	Code   Code
	Reason string
}

func (l Line) IsInformational() bool {
	return l.Code >= 100 && l.Code < 200
}

func (l Line) IsSuccess() bool {
	return l.Code >= 200 && l.Code < 300
}

func (l Line) IsRedirect() bool {
	return l.Code >= 300 && l.Code < 400
}

func (l Line) IsError() bool {
	return l.Code >= 400
}

// BodyForbidden reports whether a response with such a code never carries a body,
// regardless of its framing headers.
func (c Code) BodyForbidden() bool {
	return (c >= 100 && c < 200) || c == NoContent || c == NotModified
}

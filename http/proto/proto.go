package proto

import (
	"strings"

	"github.com/indigo-web/utils/uf"
)

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11

	HTTP1 = HTTP10 | HTTP11
)

func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return ""
	}
}

const (
	protoTokenLength   = len("HTTP/x.x")
	majorVersionOffset = len("HTTP/x") - 1
	minorVersionOffset = len("HTTP/x.x") - 1
	httpScheme         = "HTTP/"
)

// FromBytes recognizes the exact tokens HTTP/1.0 and HTTP/1.1. Everything else is Unknown.
func FromBytes(raw []byte) Proto {
	return FromString(uf.B2S(raw))
}

func FromString(raw string) Proto {
	if len(raw) != protoTokenLength || raw[:majorVersionOffset] != httpScheme {
		return Unknown
	}

	return Parse(raw[majorVersionOffset]-'0', raw[minorVersionOffset]-'0')
}

func Parse(major, minor uint8) Proto {
	if major != 1 {
		return Unknown
	}

	switch minor {
	case 0:
		return HTTP10
	case 1:
		return HTTP11
	default:
		return Unknown
	}
}

// IsHTTP1 tells whether the version token belongs to the HTTP/1.x family. This is looser
// than FromString, e.g. HTTP/1.2 is accepted.
func IsHTTP1(token string) bool {
	return strings.Contains(token, "/1.")
}

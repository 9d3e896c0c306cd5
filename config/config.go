package config

import (
	"math"
	"time"
)

type (
	NET struct {
		// ReadBufferSize is the capacity of the rolling buffer every response is read
		// through. It never grows nor shrinks during the lifetime of a connection.
		ReadBufferSize int
		// WriteBufferSize is used to frame request bodies of unknown length into chunks.
		WriteBufferSize int
		// ReadTimeout is applied before every read from the socket. Exceeding it surfaces
		// as errors.ErrIO.
		ReadTimeout time.Duration
		// WriteTimeout is applied before every write into the socket.
		WriteTimeout time.Duration
		// DialTimeout limits the time spent establishing the connection.
		DialTimeout time.Duration
	}

	Headers struct {
		// MaxPreambleSize limits the status line together with all the header fields,
		// including the terminating blank line.
		MaxPreambleSize int
		// MaxLineSize limits chunk size lines (including extensions) and trailer fields.
		MaxLineSize int
	}

	Body struct {
		// MaxSize describes the maximal size of a response body that can be processed.
		// In order to disable the setting, use the math.MaxUint64 value (default).
		MaxSize uint64
	}
)

// Config holds limits, buffer sizes and timeouts used by a client connection.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because zero values are mostly meaningless here.
type Config struct {
	NET     NET
	Headers Headers
	Body    Body
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			ReadTimeout:     90 * time.Second,
			WriteTimeout:    90 * time.Second,
			DialTimeout:     10 * time.Second,
		},
		Headers: Headers{
			MaxPreambleSize: 16 * 1024, // there might be extremely long cookies.
			MaxLineSize:     4 * 1024,
		},
		Body: Body{
			MaxSize: math.MaxUint64,
		},
	}
}

package tcp

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/indigo-web/h1client/config"
	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/internal/buffer"
)

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

// Client is a rolling buffer over a duplex byte stream. It owns the stream exclusively
// together with a fixed-size storage, from which lines and byte ranges are handed out.
// The stream is touched only when buffered bytes are exhausted.
//
// Invariant: 0 <= begin <= end <= len(storage).
type Client struct {
	conn       io.ReadWriter
	storage    []byte
	begin, end int
	line       buffer.Buffer
	// pending is an error, that arrived together with data. It's reported by the
	// next refill, after the data has been consumed.
	pending      error
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewClient wraps the stream. The storage is used as is and must have non-zero length.
// Timeouts are applied only if the stream supports deadlines (e.g. net.Conn).
func NewClient(conn io.ReadWriter, cfg config.NET, storage []byte) *Client {
	if len(storage) == 0 {
		panic("BUG: tcp client: zero-length storage")
	}

	return &Client{
		conn:         conn,
		storage:      storage,
		line:         buffer.New(0, 0),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

// Dial establishes a TCP connection to addr.
func Dial(addr string, cfg config.NET) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrIO, err)
	}

	return conn, nil
}

// ReadLine returns everything before delim, discarding the delimiter itself. The buffer is
// left positioned right after the delimiter. The delimiter may straddle any number of
// network reads. Limit bounds the length of the line (0 disables it), exceeding it
// results in errors.ErrLineTooLong.
//
// The returned slice is valid only until the next read.
func (c *Client) ReadLine(delim []byte, limit int) ([]byte, error) {
	if len(delim) == 0 {
		panic("BUG: tcp client: empty delimiter")
	}

	c.line.Clear()
	if limit > 0 {
		// leave the room for a delimiter prefix, waiting for its remainder
		c.line.SetLimit(limit + len(delim) - 1)
	} else {
		c.line.SetLimit(0)
	}

	for {
		window := c.storage[c.begin:c.end]

		if n := seam(c.line.Bytes(), window, delim); n > 0 {
			c.line.Trunc(len(delim) - n)
			c.begin += n
			return c.checkLimit(c.line.Bytes(), limit)
		}

		if i := bytes.Index(window, delim); i != -1 {
			c.begin += i + len(delim)

			if c.line.Len() == 0 {
				return c.checkLimit(window[:i], limit)
			}

			if !c.line.Append(window[:i]) {
				return nil, errors.ErrLineTooLong
			}

			return c.checkLimit(c.line.Bytes(), limit)
		}

		if !c.line.Append(window) {
			return nil, errors.ErrLineTooLong
		}

		c.begin = c.end
		if err := c.refill(); err != nil {
			return nil, err
		}
	}
}

func (c *Client) checkLimit(line []byte, limit int) ([]byte, error) {
	if limit > 0 && len(line) > limit {
		return nil, errors.ErrLineTooLong
	}

	return line, nil
}

// seam looks for a delimiter, starting at the tail of the already accumulated line and
// ending in the window. Returns how many window bytes complete it, 0 if there's no such.
func seam(line, window, delim []byte) int {
	for k := min(len(delim)-1, len(line)); k > 0; k-- {
		rest := delim[k:]
		if len(window) >= len(rest) &&
			bytes.HasSuffix(line, delim[:k]) &&
			bytes.HasPrefix(window, rest) {
			return len(rest)
		}
	}

	return 0
}

// ReadBytes copies up to len(dest) bytes, preferring already buffered ones. If nothing is
// buffered, exactly one read from the stream is made. The number of copied bytes may be
// less than len(dest), which isn't an error.
func (c *Client) ReadBytes(dest []byte) (int, error) {
	if len(dest) == 0 {
		return 0, nil
	}

	if c.begin == c.end {
		if err := c.refill(); err != nil {
			return 0, err
		}
	}

	n := copy(dest, c.storage[c.begin:c.end])
	c.begin += n

	return n, nil
}

// Buffered returns bytes which are already read from the stream, but not consumed yet.
func (c *Client) Buffered() []byte {
	return c.storage[c.begin:c.end]
}

// refill overwrites the storage from the beginning. It must be called only if all the
// buffered data is consumed.
func (c *Client) refill() error {
	if c.pending != nil {
		err := c.pending
		c.pending = nil
		c.begin, c.end = 0, 0

		return streamError(err)
	}

	if d, ok := c.conn.(readDeadliner); ok && c.readTimeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return streamError(err)
		}
	}

	n, err := c.conn.Read(c.storage)
	c.begin, c.end = 0, n
	if n > 0 {
		c.pending = err
		return nil
	}

	return streamError(err)
}

func streamError(err error) error {
	switch err {
	case nil, io.EOF:
		// zero bytes read means the peer closed the stream
		return errors.ErrStreamClosed
	default:
		return fmt.Errorf("%w: %w", errors.ErrIO, err)
	}
}

// Write writes the whole data into the stream.
func (c *Client) Write(b []byte) error {
	if d, ok := c.conn.(writeDeadliner); ok && c.writeTimeout > 0 {
		if err := d.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrIO, err)
		}
	}

	for len(b) > 0 {
		n, err := c.conn.Write(b)
		if err != nil {
			return fmt.Errorf("%w: %w", errors.ErrIO, err)
		}

		b = b[n:]
	}

	return nil
}

// Close closes the stream, if it's closable.
func (c *Client) Close() error {
	if closer, ok := c.conn.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

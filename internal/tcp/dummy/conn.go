package dummy

import (
	"io"
	"net"
	"time"
)

var _ net.Conn = new(Conn)

// Conn returns pre-defined fragments, one per read, and io.EOF after all of them are
// returned. Every fragment is delivered as is, unless it's bigger than the reader's
// buffer, in which case the rest is kept for the next read. It also journals all the
// written data, making it a mock suitable for most of the tests.
type Conn struct {
	data    [][]byte
	pointer int
	err     error
	closed  bool
	reads   int
	Written []byte
	// Deadlines counts how many times read deadlines were set.
	Deadlines int
}

func NewConn(fragments ...[]byte) *Conn {
	return &Conn{
		data: append([][]byte(nil), fragments...),
	}
}

// NewConnString is a shortcut for NewConn, taking fragments as strings.
func NewConnString(fragments ...string) *Conn {
	data := make([][]byte, len(fragments))
	for i, f := range fragments {
		data[i] = []byte(f)
	}

	return NewConn(data...)
}

// Scatter splits the data into fragments of the given size. The last one may be shorter.
func Scatter(data []byte, size int) (fragments [][]byte) {
	for len(data) > 0 {
		n := min(size, len(data))
		fragments = append(fragments, data[:n])
		data = data[n:]
	}

	return fragments
}

// FailWith makes the connection return the error instead of io.EOF once the fragments
// run out.
func (c *Conn) FailWith(err error) *Conn {
	c.err = err
	return c
}

// Reads returns the number of Read calls made so far.
func (c *Conn) Reads() int {
	return c.reads
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.reads++

	if c.closed {
		return 0, io.EOF
	}

	for c.pointer < len(c.data) && len(c.data[c.pointer]) == 0 {
		c.pointer++
	}

	if c.pointer >= len(c.data) {
		if c.err != nil {
			return 0, c.err
		}

		return 0, io.EOF
	}

	n = copy(b, c.data[c.pointer])
	if c.data[c.pointer] = c.data[c.pointer][n:]; len(c.data[c.pointer]) == 0 {
		c.pointer++
	}

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}

	c.Written = append(c.Written, b...)
	return len(b), nil
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

func (*Conn) LocalAddr() net.Addr {
	return nil
}

func (*Conn) RemoteAddr() net.Addr {
	return nil
}

func (*Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	c.Deadlines++
	return nil
}

func (*Conn) SetWriteDeadline(time.Time) error {
	return nil
}

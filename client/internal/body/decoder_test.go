package body

import (
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/h1client/config"
	"github.com/indigo-web/h1client/errors"
	"github.com/indigo-web/h1client/http/headers"
	"github.com/indigo-web/h1client/internal/tcp"
	"github.com/indigo-web/h1client/internal/tcp/dummy"
	"github.com/stretchr/testify/require"
)

func newDecoder(cfg *config.Config, conn *dummy.Conn) *Decoder {
	client := tcp.NewClient(conn, cfg.NET, make([]byte, cfg.NET.ReadBufferSize))
	return NewDecoder(client, cfg)
}

func chunkedHeaders() []headers.Header {
	return []headers.Header{headers.NewChunked()}
}

func lengthHeaders(n uint64) []headers.Header {
	return []headers.Header{headers.NewContentLength(n)}
}

// drain reads the body until the decoder reports it's over, checking that HasMore
// flips exactly when the last byte is delivered.
func drain(t *testing.T, d *Decoder, buffSize int) string {
	var (
		result []byte
		buff   = make([]byte, buffSize)
	)

	for d.HasMore() {
		n, err := d.Read(buff)
		require.NoError(t, err)
		result = append(result, buff[:n]...)
		if n == 0 {
			break
		}
	}

	require.False(t, d.HasMore())
	return string(result)
}

// decodeChunked decodes the chunked stream by a reference parser.
func decodeChunked(t *testing.T, data []byte) string {
	parser := chunkedbody.NewParser(chunkedbody.DefaultSettings())
	var result []byte

	for len(data) > 0 {
		chunk, extra, err := parser.Parse(data, false)
		result = append(result, chunk...)
		if err != nil {
			require.EqualError(t, err, io.EOF.Error())
			break
		}

		data = extra
	}

	return string(result)
}

func TestDecoder_FixedLength(t *testing.T) {
	t.Run("body in 2-byte fragments", func(t *testing.T) {
		conn := dummy.NewConn(dummy.Scatter([]byte("Hello"), 2)...)
		d := newDecoder(config.Default(), conn)
		require.NoError(t, d.Init(lengthHeaders(5)))

		var (
			total  int
			result []byte
			buff   = make([]byte, 16)
		)

		for d.HasMore() {
			n, err := d.Read(buff)
			require.NoError(t, err)
			total += n
			result = append(result, buff[:n]...)
			require.Equal(t, total < 5, d.HasMore())
		}

		require.Equal(t, 5, total)
		require.Equal(t, "Hello", string(result))
		require.Equal(t, 3, conn.Reads())
	})

	t.Run("never reads past the body", func(t *testing.T) {
		cfg := config.Default()
		client := tcp.NewClient(dummy.NewConnString("HelloHTTP/1.1"), cfg.NET, make([]byte, 64))
		d := NewDecoder(client, cfg)
		require.NoError(t, d.Init(lengthHeaders(5)))
		require.Equal(t, "Hello", drain(t, d, 64))
		require.Equal(t, "HTTP/1.1", string(client.Buffered()))
	})

	t.Run("small destination", func(t *testing.T) {
		body := strings.Repeat("abcdefgh", 100)
		d := newDecoder(config.Default(), dummy.NewConn(dummy.Scatter([]byte(body), 7)...))
		require.NoError(t, d.Init(lengthHeaders(uint64(len(body)))))
		require.Equal(t, body, drain(t, d, 3))
	})

	t.Run("zero length", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConn())
		require.NoError(t, d.Init(lengthHeaders(0)))
		require.False(t, d.HasMore())
		_, err := d.Read(make([]byte, 1))
		require.ErrorIs(t, err, errors.ErrAlreadyExhausted)
	})

	t.Run("peer closes early", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("Hel"))
		require.NoError(t, d.Init(lengthHeaders(5)))
		buff := make([]byte, 16)
		n, err := d.Read(buff)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.True(t, d.HasMore())
		_, err = d.Read(buff)
		require.ErrorIs(t, err, errors.ErrStreamClosed)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 4
		d := newDecoder(cfg, dummy.NewConnString("Hello"))
		require.ErrorIs(t, d.Init(lengthHeaders(5)), errors.ErrBodyTooLarge)
	})

	t.Run("conflicting lengths", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConn())
		err := d.Init([]headers.Header{headers.NewContentLength(5), headers.NewContentLength(6)})
		require.ErrorIs(t, err, errors.ErrMalformedHeader)

		err = d.Init([]headers.Header{headers.NewContentLength(5), headers.NewContentLength(5)})
		require.NoError(t, err)
	})
}

func TestDecoder_Chunked(t *testing.T) {
	t.Run("wikipedia", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		require.Equal(t, "Wikipedia", drain(t, d, 64))
		_, err := d.Read(make([]byte, 1))
		require.ErrorIs(t, err, errors.ErrAlreadyExhausted)
	})

	t.Run("chunked wins over content length", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("0\r\n\r\n"))
		require.NoError(t, d.Init([]headers.Header{headers.NewContentLength(0), headers.NewChunked()}))
		require.True(t, d.HasMore())
		n, err := d.Read(make([]byte, 16))
		require.NoError(t, err)
		require.Zero(t, n)
		require.False(t, d.HasMore())
	})

	t.Run("malformed chunk size", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("xyz\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		n, err := d.Read(make([]byte, 16))
		require.ErrorIs(t, err, errors.ErrMalformedChunkSize)
		require.Zero(t, n)
	})

	t.Run("zero-padded chunk size", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("00000000000000005\r\nhello\r\n0000\r\n\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		require.Equal(t, "hello", drain(t, d, 64))
	})

	t.Run("chunk size line split", func(t *testing.T) {
		whole := newDecoder(config.Default(), dummy.NewConnString("3\r\nabc\r\n0\r\n\r\n"))
		require.NoError(t, whole.Init(chunkedHeaders()))
		split := newDecoder(config.Default(), dummy.NewConnString("3", "\r\n", "abc\r\n0\r\n\r\n"))
		require.NoError(t, split.Init(chunkedHeaders()))
		require.Equal(t, drain(t, whole, 64), drain(t, split, 64))
	})

	t.Run("every fragment size", func(t *testing.T) {
		sample := []byte("d;hello=world\r\nHello, world!\r\nd\r\nHello, Pavlo!\r\n0; checksum=no one cares\r\n\r\n")
		want := decodeChunked(t, sample)
		require.Equal(t, "Hello, world!Hello, Pavlo!", want)

		for i := 1; i <= len(sample); i++ {
			for _, buffSize := range []int{1, 5, 64} {
				d := newDecoder(config.Default(), dummy.NewConn(dummy.Scatter(sample, i)...))
				require.NoError(t, d.Init(chunkedHeaders()))
				require.Equal(t, want, drain(t, d, buffSize))
			}
		}
	})

	t.Run("long chunks through a small buffer", func(t *testing.T) {
		payload := strings.Repeat("abcdefgh", 640)
		var wire strings.Builder
		for rest := payload; len(rest) > 0; {
			n := min(len(rest), 300)
			wire.WriteString(strconv.FormatInt(int64(n), 16) + "\r\n" + rest[:n] + "\r\n")
			rest = rest[n:]
		}
		wire.WriteString("0\r\n\r\n")

		require.Equal(t, payload, decodeChunked(t, []byte(wire.String())))

		cfg := config.Default()
		cfg.NET.ReadBufferSize = 64
		d := newDecoder(cfg, dummy.NewConnString(wire.String()))
		require.NoError(t, d.Init(chunkedHeaders()))
		require.Equal(t, payload, drain(t, d, 100))
	})

	t.Run("trailers", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString(
			"5\r\nHello\r\n0\r\nExpires: never\r\nChecksum: abc\r\n\r\n",
		))
		require.NoError(t, d.Init(chunkedHeaders()))
		require.Equal(t, "Hello", drain(t, d, 64))
		require.Equal(t, []headers.Header{
			headers.NewCustom("Expires", "never"),
			headers.NewCustom("Checksum", "abc"),
		}, d.Trailers())
	})

	t.Run("malformed trailer", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("0\r\nno colon\r\n\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		_, err := d.Read(make([]byte, 16))
		require.ErrorIs(t, err, errors.ErrMalformedHeader)
	})

	t.Run("missing chunk terminator", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("3\r\nabcdef\r\n0\r\n\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		n, err := d.Read(make([]byte, 16))
		require.ErrorIs(t, err, errors.ErrMalformedChunk)
		require.Equal(t, 3, n)
	})

	t.Run("peer closes mid chunk", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("5\r\nHel"))
		require.NoError(t, d.Init(chunkedHeaders()))
		buff := make([]byte, 16)
		n, err := d.Read(buff)
		require.NoError(t, err)
		require.Equal(t, "Hel", string(buff[:n]))
		_, err = d.Read(buff)
		require.ErrorIs(t, err, errors.ErrStreamClosed)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 8
		d := newDecoder(cfg, dummy.NewConnString("5\r\nHello\r\n5\r\nworld\r\n0\r\n\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		buff := make([]byte, 16)
		n, err := d.Read(buff)
		require.NoError(t, err)
		require.Equal(t, 5, n)
		_, err = d.Read(buff)
		require.ErrorIs(t, err, errors.ErrBodyTooLarge)
	})

	t.Run("chunk size line too long", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.MaxLineSize = 8
		d := newDecoder(cfg, dummy.NewConnString("5;"+strings.Repeat("x", 20)+"\r\nHello\r\n"))
		require.NoError(t, d.Init(chunkedHeaders()))
		_, err := d.Read(make([]byte, 16))
		require.ErrorIs(t, err, errors.ErrLineTooLong)
	})
}

func TestDecoder_States(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConn())
		require.False(t, d.HasMore())
		_, err := d.Read(make([]byte, 1))
		require.ErrorIs(t, err, errors.ErrResponseNotStarted)
	})

	t.Run("no framing headers", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("Hello"))
		require.NoError(t, d.Init([]headers.Header{headers.NewCustom("Hello", "world")}))
		require.False(t, d.HasMore())
		_, err := d.Read(make([]byte, 1))
		require.ErrorIs(t, err, errors.ErrAlreadyExhausted)
	})

	t.Run("empty", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("Hello"))
		d.InitEmpty()
		require.False(t, d.HasMore())
	})

	t.Run("reset", func(t *testing.T) {
		d := newDecoder(config.Default(), dummy.NewConnString("Hello"))
		require.NoError(t, d.Init(lengthHeaders(5)))
		d.Reset()
		_, err := d.Read(make([]byte, 1))
		require.ErrorIs(t, err, errors.ErrResponseNotStarted)
	})

	t.Run("zero-length destination", func(t *testing.T) {
		conn := dummy.NewConnString("4\r\nWiki\r\n0\r\n\r\n")
		d := newDecoder(config.Default(), conn)

		check := func() {
			n, err := d.Read(nil)
			require.NoError(t, err)
			require.Zero(t, n)
		}

		check()
		require.NoError(t, d.Init(chunkedHeaders()))
		check()
		require.Zero(t, conn.Reads())
		require.Equal(t, "Wiki", drain(t, d, 64))
		check()

		require.NoError(t, d.Init(lengthHeaders(3)))
		check()
		require.True(t, d.HasMore())
	})
}

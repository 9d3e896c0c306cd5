package hexconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func BenchmarkHalfbyte(b *testing.B) {
	str := strings.Repeat("abcdef0123", 4)
	b.SetBytes(int64(len(str)))
	b.ResetTimer()

	for range b.N {
		var result uint64

		for j := range str {
			result = (result << 4) | uint64(Halfbyte[str[j]])
		}
	}
}

func TestHalfbyte(t *testing.T) {
	for i, c := range "0123456789abcdef" {
		require.Equal(t, byte(i), Halfbyte[c])
	}

	for i, c := range "ABCDEF" {
		require.Equal(t, byte(10+i), Halfbyte[c])
	}

	for _, c := range []byte("gxzG \r\n;-") {
		require.False(t, Is(c), string(c))
	}
}

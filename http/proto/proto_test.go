package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProto(t *testing.T) {
	require.Equal(t, HTTP10, FromString("HTTP/1.0"))
	require.Equal(t, HTTP11, FromBytes([]byte("HTTP/1.1")))
	require.Equal(t, Unknown, FromString("HTTP/2.0"))
	require.Equal(t, Unknown, FromString("HTTP/1.1 "))
	require.Equal(t, Unknown, FromString("HTXP/1.1"))
	require.Equal(t, "HTTP/1.1", HTTP11.String())
	require.Empty(t, Unknown.String())

	require.True(t, IsHTTP1("HTTP/1.2"))
	require.False(t, IsHTTP1("HTTP/2"))
}

package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode_BodyForbidden(t *testing.T) {
	for _, code := range []Code{Continue, SwitchingProtocols, 199, NoContent, NotModified} {
		require.True(t, code.BodyForbidden(), code)
	}

	for _, code := range []Code{OK, Created, Found, NotFound, InternalServerError} {
		require.False(t, code.BodyForbidden(), code)
	}
}

func TestLine_Classes(t *testing.T) {
	require.True(t, Line{Code: Continue}.IsInformational())
	require.True(t, Line{Code: Accepted}.IsSuccess())
	require.True(t, Line{Code: PermanentRedirect}.IsRedirect())
	require.True(t, Line{Code: Teapot}.IsError())
	require.True(t, Line{Code: BadGateway}.IsError())
	require.False(t, Line{Code: OK}.IsError())
}

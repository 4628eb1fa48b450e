package codeobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURIFile(t *testing.T) {
	u, err := ParseURI("file:///a%20b?offset=0x10&size=32")
	require.NoError(t, err)
	assert.Equal(t, "file", u.Protocol)
	assert.Equal(t, "/a b", u.Path)
	assert.EqualValues(t, 16, u.Offset)
	assert.EqualValues(t, 32, u.Size)
}

func TestParseURIMemoryZeroSize(t *testing.T) {
	u, err := ParseURI("memory://x#offset=0&size=0")
	require.NoError(t, err)
	assert.EqualValues(t, 0, u.Offset)
	assert.EqualValues(t, 0, u.Size)
	// offset and size must both be nonzero for memory:// reads; the store
	// layer is responsible for rejecting this, not ParseURI itself.
}

func TestParseURIUnsupportedProtocol(t *testing.T) {
	_, err := ParseURI("http://example.com/foo")
	require.Error(t, err)
	var upe *ErrUnsupportedProtocol
	assert.True(t, asUnsupported(err, &upe))
}

func asUnsupported(err error, target **ErrUnsupportedProtocol) bool {
	if e, ok := err.(*ErrUnsupportedProtocol); ok {
		*target = e
		return true
	}
	return false
}

func TestParseURIInvalidEscape(t *testing.T) {
	u, err := ParseURI("file://a%2gzz")
	require.NoError(t, err)
	assert.Equal(t, "a%2gzz", u.Path)
}

func TestParseURIProtocolLowercased(t *testing.T) {
	u, err := ParseURI("FILE:///tmp/a")
	require.NoError(t, err)
	assert.Equal(t, "file", u.Protocol)
}

func TestParseURIUnknownParamIgnored(t *testing.T) {
	u, err := ParseURI("file:///tmp/a?offset=8&bogus=1")
	require.NoError(t, err)
	assert.EqualValues(t, 8, u.Offset)
}

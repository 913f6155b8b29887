package stomp

import (
	"testing"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_SetsContentLength(t *testing.T) {
	f := frame.New(frame.SEND, frame.Destination, "/pub/chat/message")
	f.Body = []byte(`{"companyId":1,"message":"안녕하세요"}`)

	data, err := Encode(f)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, frame.SEND, decoded.Command)
	assert.Equal(t, "/pub/chat/message", decoded.Header.Get(frame.Destination))
	assert.Equal(t, f.Body, decoded.Body)

	n, ok, err := decoded.Header.ContentLength()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, len(f.Body), n)
}

func TestDecode_HeartBeat(t *testing.T) {
	_, err := Decode([]byte("\n"))
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestNewConnect(t *testing.T) {
	f := NewConnect("localhost", "abc")
	assert.Equal(t, frame.CONNECT, f.Command)
	assert.Equal(t, AcceptVersion, f.Header.Get(frame.AcceptVersion))
	assert.Equal(t, "Bearer abc", f.Header.Get("Authorization"))

	anon := NewConnect("localhost", "")
	_, ok := anon.Header.Contains("Authorization")
	assert.False(t, ok)
}

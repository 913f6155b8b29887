package stomp

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/go-stomp/stomp/v3/frame"
)

// Protocol versions offered in CONNECT and the version the broker answers with.
const (
	AcceptVersion = "1.2,1.1"
	Version       = "1.2"
)

// ErrEmptyFrame is returned by Decode for a heart-beat-only payload.
var ErrEmptyFrame = errors.New("stomp: empty frame")

// Encode renders f as a single WebSocket payload. A content-length header is set
// for frames with a body so the peer does not depend on NUL scanning.
func Encode(f *frame.Frame) ([]byte, error) {
	if len(f.Body) > 0 {
		if f.Header == nil {
			f.Header = frame.NewHeader()
		}
		f.Header.Set(frame.ContentLength, strconv.Itoa(len(f.Body)))
	}
	var buf bytes.Buffer
	if err := frame.NewWriter(&buf).Write(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses one frame from a WebSocket payload.
func Decode(data []byte) (*frame.Frame, error) {
	f, err := frame.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrEmptyFrame
	}
	return f, nil
}

// NewConnect builds the CONNECT frame. An empty token sends an anonymous CONNECT.
func NewConnect(host, token string) *frame.Frame {
	f := frame.New(frame.CONNECT,
		frame.AcceptVersion, AcceptVersion,
		frame.Host, host,
		frame.HeartBeat, "0,0",
	)
	if token != "" {
		f.Header.Add("Authorization", "Bearer "+token)
	}
	return f
}

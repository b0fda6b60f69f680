// Package packetcodec decodes a hexadecimal group-text packet into a
// GroupTextFrame: a one-byte channel hash, a ciphertext, and a 2-byte
// authentication tag.
package packetcodec

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
)

// GroupTextFrame is the parsed form of a group-text packet. The optional
// sender field travels inside the encrypted plaintext, not here: the
// ciphertext is opaque to the codec, and no content scan of pseudorandom
// bytes can decide whether a sender is present.
type GroupTextFrame struct {
	ChannelHash byte
	Ciphertext  []byte
	CipherMac   []byte // length meshcrypto.TagSize
}

// ErrInvalidPacket is returned (wrapped with more detail) whenever the input
// cannot be parsed as a group-text frame: bad hex, or too short to hold the
// mandatory header and tag.
var ErrInvalidPacket = errors.New("invalid packet")

const minFrameLen = 1 + meshcrypto.TagSize // channel hash byte + tag, zero-length ciphertext allowed

// Decode parses a hexadecimal string -- case-insensitive, optional "0x"
// prefix, internal whitespace stripped -- into a GroupTextFrame.
//
// Wire layout: byte 0 is the channel hash; the final meshcrypto.TagSize
// bytes are the authentication tag; everything in between is ciphertext.
func Decode(input string) (*GroupTextFrame, error) {
	raw, err := decodeHex(input)
	if err != nil {
		return nil, errWrap(err)
	}
	if len(raw) < minFrameLen {
		return nil, errWrap(errors.New("frame shorter than channel hash + tag"))
	}

	body := raw[1:]
	tagStart := len(body) - meshcrypto.TagSize
	return &GroupTextFrame{
		ChannelHash: raw[0],
		Ciphertext:  body[:tagStart],
		CipherMac:   body[tagStart:],
	}, nil
}

func decodeHex(input string) ([]byte, error) {
	s := strings.TrimSpace(input)
	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "0x")
	s = stripWhitespace(s)
	if s == "" {
		return nil, errors.New("empty input")
	}
	return hex.DecodeString(s)
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func errWrap(cause error) error {
	return &packetError{cause: cause}
}

type packetError struct {
	cause error
}

func (e *packetError) Error() string {
	return "Invalid packet: " + e.cause.Error()
}

func (e *packetError) Unwrap() error {
	return e.cause
}

func (e *packetError) Is(target error) bool {
	return target == ErrInvalidPacket
}

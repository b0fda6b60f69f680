// Package meshcrypto implements the cryptographic primitives layer: key
// derivation from a room name, the channel-hash compression of a key, tag
// verification, and decryption.
//
// Key derivation and the channel hash use sha256-simd; both sit on the
// per-candidate hot path, where every guess costs two hash calls.
package meshcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"unicode/utf8"

	sha256simd "github.com/minio/sha256-simd"
)

// KeySize is the length in bytes of a derived channel key.
const KeySize = 16

// TagSize is the length in bytes of the packet's authentication tag.
const TagSize = 2

// Key is a 16-byte secret derived from a room name.
type Key [KeySize]byte

// DeriveKey computes K = truncate16(SHA256("#" + name)), the pure function
// of the room name that recovers the channel key.
func DeriveKey(name string) Key {
	h := sha256simd.New()
	h.Write([]byte{'#'})
	h.Write([]byte(name))
	sum := h.Sum(nil)
	var k Key
	copy(k[:], sum[:KeySize])
	return k
}

// ChannelHash computes the one-byte public channel identifier: the
// least-significant byte of SHA256(key).
func ChannelHash(key Key) byte {
	sum := sha256simd.Sum256(key[:])
	return sum[len(sum)-1]
}

// tagMAC derives the 2-byte authentication tag for ciphertext under key:
// an HMAC-SHA256 over the ciphertext, truncated to TagSize bytes.
func tagMAC(key Key, ciphertext []byte) []byte {
	mac := hmac.New(sha256simd.New, key[:])
	mac.Write(ciphertext)
	return mac.Sum(nil)[:TagSize]
}

// Verify reports whether tag is the correct authentication tag for
// ciphertext under key, in constant time.
func Verify(ciphertext, tag []byte, key Key) bool {
	if len(tag) != TagSize {
		return false
	}
	expected := tagMAC(key, ciphertext)
	return subtle.ConstantTimeCompare(expected, tag) == 1
}

// streamIV derives a deterministic counter-mode IV from the key, so that
// Decrypt needs no out-of-band nonce. Radio firmware folds packet header
// fields into the nonce; that header never reaches this layer, so the IV
// here is a pure function of the key alone.
func streamIV(key Key) []byte {
	sum := sha256simd.Sum256(append([]byte("meshcrack-iv"), key[:]...))
	return sum[:aes.BlockSize]
}

// ErrShortFrame is returned by Decrypt when the ciphertext is too short to
// contain the mandatory timestamp and sender-length prefix.
var ErrShortFrame = errors.New("meshcrypto: ciphertext too short for a frame header")

// ErrBadSenderLength is returned by Decrypt when the sender-length byte
// claims more bytes than the plaintext holds. Under a wrong key that byte
// is effectively random, so this error doubles as an early false-positive
// reject.
var ErrBadSenderLength = errors.New("meshcrypto: sender length exceeds plaintext")

// Decrypt decrypts ciphertext under key using AES-128 in counter mode and
// splits the plaintext into a little-endian u32 timestamp (seconds since
// epoch), an optional sender field, and the remaining message bytes.
//
// Plaintext layout: timestamp(4) | senderLen(1) | sender(senderLen) |
// message. A senderLen of zero means the frame carries no sender. The
// sender travels inside the plaintext on purpose: ciphertext bytes are
// pseudorandom, so no content scan of the encrypted frame can decide
// whether a sender is present.
//
// Decrypt does not itself verify the tag; callers run Verify first.
func Decrypt(ciphertext []byte, key Key) (timestamp uint32, sender, message string, err error) {
	if len(ciphertext) < 5 {
		return 0, "", "", ErrShortFrame
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return 0, "", "", err
	}
	plain := make([]byte, len(ciphertext))
	stream := cipher.NewCTR(block, streamIV(key))
	stream.XORKeyStream(plain, ciphertext)

	timestamp = binary.LittleEndian.Uint32(plain[:4])
	senderLen := int(plain[4])
	rest := plain[5:]
	if senderLen > len(rest) {
		return 0, "", "", ErrBadSenderLength
	}
	sender = string(rest[:senderLen])
	message = string(rest[senderLen:])
	return timestamp, sender, message, nil
}

// Encrypt is the inverse of Decrypt; it exists for tests and for any caller
// that needs to build a self-consistent fixture (this engine never encrypts
// packets as part of cracking them). A sender longer than 255 bytes cannot
// be encoded and panics.
func Encrypt(timestamp uint32, sender, message string, key Key) []byte {
	if len(sender) > 255 {
		panic("meshcrypto: sender field longer than 255 bytes")
	}
	plain := make([]byte, 5+len(sender)+len(message))
	binary.LittleEndian.PutUint32(plain[:4], timestamp)
	plain[4] = byte(len(sender))
	copy(plain[5:], sender)
	copy(plain[5+len(sender):], message)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		panic(err) // key is always KeySize bytes; aes.NewCipher cannot fail
	}
	ciphertext := make([]byte, len(plain))
	stream := cipher.NewCTR(block, streamIV(key))
	stream.XORKeyStream(ciphertext, plain)
	return ciphertext
}

// Tag is the public constructor for a packet's authentication tag, used by
// tests to build fixtures; production packets arrive with their tag already
// attached.
func Tag(key Key, ciphertext []byte) []byte {
	return tagMAC(key, ciphertext)
}

// HasReplacementChar reports whether s contains the Unicode replacement
// character U+FFFD, the textual-plausibility filter's signal of a decode
// that was not clean.
func HasReplacementChar(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return true
		}
	}
	return false
}

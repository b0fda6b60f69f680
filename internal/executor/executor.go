// Package executor implements the batch-executor contract: given a target
// channel-hash byte, a candidate length, a within-length offset, and a
// batch size, return the within-batch indices whose derived key matches the
// target hash and (when ciphertext/tag are supplied) passes tag
// verification.
//
// Two backends satisfy the same Backend interface: Portable, a
// straight-line sequential loop, and Accelerator, a data-parallel CPU
// worker pool.
package executor

import (
	"context"

	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
	"github.com/mesh-relay/meshcrack/internal/roomname"
)

// MaxMatchesPerDispatch bounds the fixed-size output buffer a single
// dispatch can return. Surplus matches (extremely rare for a 1-byte hash
// plus 2-byte tag) are silently dropped; the filter chain re-verifies every
// returned candidate regardless.
const MaxMatchesPerDispatch = 256

// Match is a single within-batch hit: the batch-relative index and the key
// that produced it.
type Match struct {
	Index uint64
	Key   meshcrypto.Key
}

// DispatchInput is the input to one batch dispatch.
type DispatchInput struct {
	TargetHash byte
	Length     int
	Offset     uint64
	BatchSize  uint64
	// Ciphertext and Tag may be nil, turning the dispatch into a hash-only
	// probe. The orchestrator always supplies both once it has parsed a
	// packet.
	Ciphertext []byte
	Tag        []byte
}

// Backend is the interchangeable batch-executor contract. Exactly one
// implementation is active during a given crack call, selected once at
// start.
type Backend interface {
	// Init prepares the backend for use, returning an error if the backend
	// is unavailable (e.g. Accelerator with no usable parallelism). A
	// failed Init is never surfaced to the caller of the cracking engine;
	// the orchestrator falls back to Portable.
	Init() error

	// Dispatch evaluates BatchSize consecutive candidates starting at
	// Offset and returns the matches, bounded by MaxMatchesPerDispatch.
	// evaluated is the length of the contiguous prefix of the batch that
	// was actually inspected; it is BatchSize on a full run and smaller
	// when cancellation stopped the dispatch early (a full output buffer
	// does not stop it). The orchestrator advances its offset by evaluated, never by
	// the nominal batch size, so a resume cursor can only point past
	// candidates that really were inspected. Matches are returned even
	// alongside a non-nil error: a tag-verified hit found moments before
	// cancellation is still a hit.
	Dispatch(ctx context.Context, in DispatchInput) (matches []Match, evaluated uint64, err error)

	// Name identifies the backend for logging/progress purposes.
	Name() string

	// Destroy releases any backend-owned resources (pipeline state,
	// worker pools). Safe to call on an uninitialized backend.
	Destroy()
}

// evaluateCandidate is the per-candidate inner loop shared by both backends:
// grammar skip, hash check, then (if supplied) tag verification, in that
// order.
func evaluateCandidate(in DispatchInput, index uint64) (meshcrypto.Key, bool) {
	name, ok := roomname.IndexToRoomName(in.Length, index)
	if !ok {
		return meshcrypto.Key{}, false
	}
	key := meshcrypto.DeriveKey(name)
	if meshcrypto.ChannelHash(key) != in.TargetHash {
		return meshcrypto.Key{}, false
	}
	if in.Ciphertext != nil && in.Tag != nil {
		if !meshcrypto.Verify(in.Ciphertext, in.Tag, key) {
			return meshcrypto.Key{}, false
		}
	}
	return key, true
}

// Package meshcrack cracks the channel key of an encrypted mesh-radio
// group-text packet by recovering the short, human-chosen room name it was
// derived from.
//
// A room name is tried against the well-known public room, then a
// user-supplied dictionary, then an exhaustive brute-force enumeration of
// the room-name grammar, in that order. Dictionary and brute-force phases
// can be resumed from a cursor returned in a prior, aborted Result.
//
// Layout: internal/roomname (the enumerator), internal/dictionary (the
// bucketed word-list index), internal/executor (the batch backends and
// auto-tuner), internal/filter (the false-positive filter chain), and
// internal/cracker (the phase orchestrator). Client is a thin façade over
// internal/cracker.Engine.
package meshcrack

import (
	"context"

	"github.com/mesh-relay/meshcrack/internal/cracker"
	"github.com/mesh-relay/meshcrack/internal/dictionary"
	"github.com/mesh-relay/meshcrack/internal/packetcodec"
	"github.com/mesh-relay/meshcrack/internal/wordlist"
)

// Re-exported so callers never need to import internal/cracker directly.
type (
	Options        = cracker.Options
	Result         = cracker.Result
	ProgressReport = cracker.ProgressReport
	ProgressFunc   = cracker.ProgressFunc
	StartFromType  = cracker.StartFromType
)

const (
	StartFromNone       = cracker.StartFromNone
	StartFromDictionary = cracker.StartFromDictionary
	StartFromBruteforce = cracker.StartFromBruteforce
)

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return cracker.DefaultOptions()
}

// DecodedPacket is the parsed form of a group-text packet, returned by
// DecodePacket so a caller can inspect it before committing to a Crack call.
type DecodedPacket struct {
	ChannelHash   byte
	CiphertextLen int
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithWordlistBuildProgress registers a callback invoked roughly every
// 10,000 words while SetWordlist or LoadWordlist builds the dictionary
// index.
func WithWordlistBuildProgress(fn func(processed, total int)) ClientOption {
	return func(c *Client) {
		c.buildProgress = fn
	}
}

// Client is the entry point of this package. It is not safe for concurrent
// Crack calls; callers needing concurrent cracks should use one Client per
// goroutine.
type Client struct {
	engine        *cracker.Engine
	buildProgress dictionary.BuildProgressFunc
}

// NewClient constructs a Client with no word list loaded.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{engine: cracker.NewEngine()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadWordlist fetches a newline-delimited word list from a file:// or
// http(s):// URL and builds the dictionary index from it.
func (c *Client) LoadWordlist(ctx context.Context, url string) error {
	words, err := wordlist.Load(ctx, url)
	if err != nil {
		return err
	}
	c.engine.SetWordlist(words, c.buildProgress)
	return nil
}

// SetWordlist builds the dictionary index directly from an in-memory word
// list, bypassing LoadWordlist's fetch step.
func (c *Client) SetWordlist(words []string) {
	c.engine.SetWordlist(words, c.buildProgress)
}

// DecodePacket parses a hexadecimal group-text packet without attempting to
// crack it, useful for validating input before a long-running Crack call.
func (c *Client) DecodePacket(hex string) (*DecodedPacket, error) {
	frame, err := packetcodec.Decode(hex)
	if err != nil {
		return nil, err
	}
	return &DecodedPacket{
		ChannelHash:   frame.ChannelHash,
		CiphertextLen: len(frame.Ciphertext),
	}, nil
}

// Crack decodes hex and searches for the room name that decrypts it,
// reporting progress through onProgress (which may be nil).
func (c *Client) Crack(ctx context.Context, hex string, opts Options, onProgress ProgressFunc) Result {
	frame, err := packetcodec.Decode(hex)
	if err != nil {
		return Result{Error: err.Error()}
	}
	return c.engine.Crack(ctx, frame, opts, onProgress)
}

// Abort requests cancellation of an in-flight Crack call. Safe to call from
// any goroutine; a no-op if no crack is running.
func (c *Client) Abort() {
	c.engine.Abort()
}

// IsGPUAvailable reports whether the accelerator backend can initialize on
// this host. The name is kept for API familiarity; the accelerator here is
// a CPU worker pool, not a literal GPU pipeline.
func (c *Client) IsGPUAvailable() bool {
	return c.engine.IsGPUAvailable()
}

// Destroy releases backend and dictionary resources. The Client must not be
// used afterward.
func (c *Client) Destroy() {
	c.engine.Destroy()
}

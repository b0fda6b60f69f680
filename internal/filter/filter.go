// Package filter implements the false-positive filter chain, run only after
// the executor has already reported a hash and tag match: decrypt, then
// apply the timestamp-window, textual-plausibility, and sender-presence
// filters in order. Every enabled filter must pass; a 2-byte tag admits
// roughly one collision per 65k guesses, so over billions of guesses the
// chain is what separates the real key from noise.
package filter

import (
	"time"

	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
	"github.com/mesh-relay/meshcrack/internal/packetcodec"
)

// Config is the filter-relevant subset of the public Options.
type Config struct {
	UseTimestampFilter bool
	ValidSeconds       int64
	UseUTF8Filter      bool
	UseSenderFilter    bool
}

// DefaultConfig returns the documented defaults: timestamp and UTF-8
// filters on, a 30-day (2,592,000 second) timestamp window. UseSenderFilter
// defaults to off: most group-text frames on a public broadcast channel
// carry no sender field, so defaulting it on would reject the common case.
func DefaultConfig() Config {
	return Config{
		UseTimestampFilter: true,
		ValidSeconds:       2592000,
		UseUTF8Filter:      true,
		UseSenderFilter:    false,
	}
}

// Accepted is the output of a successful run through the chain.
type Accepted struct {
	Timestamp uint32
	Message   string // formatted "sender: message" when a sender was found and the sender filter is enabled
}

// Now is overridable by tests; production code leaves it as time.Now.
var Now = time.Now

// Run decrypts the frame's ciphertext under key and applies every enabled
// filter in order, returning ok=false the moment any enabled filter
// rejects.
func Run(frame *packetcodec.GroupTextFrame, key meshcrypto.Key, cfg Config) (Accepted, bool) {
	timestamp, sender, message, err := meshcrypto.Decrypt(frame.Ciphertext, key)
	if err != nil {
		return Accepted{}, false
	}

	if cfg.UseTimestampFilter {
		now := Now().Unix()
		age := now - int64(timestamp)
		if age < -cfg.ValidSeconds || age > cfg.ValidSeconds {
			return Accepted{}, false
		}
	}

	if cfg.UseUTF8Filter && meshcrypto.HasReplacementChar(message) {
		return Accepted{}, false
	}

	out := message
	if cfg.UseSenderFilter {
		if sender == "" {
			return Accepted{}, false
		}
		out = sender + ": " + message
	}

	return Accepted{Timestamp: timestamp, Message: out}, true
}

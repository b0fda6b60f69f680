// Package dictionary builds and queries the bucketed word-list index: a
// precomputed view of a user-supplied word list, bucketed by channel hash
// so the dictionary attack scans the expected O(|W|/256) words instead of
// the whole list.
package dictionary

import (
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
	"github.com/mesh-relay/meshcrack/internal/roomname"
)

// IndexedWord is a word that survived the grammar filter, paired with its
// precomputed key and its position among all surviving words in original
// list order. Resume cursors are defined against Position, not bucket-local
// order: a cursor recorded against one crack call's target hash must still
// make sense against a later call with a different target hash.
type IndexedWord struct {
	Word     string
	Key      meshcrypto.Key
	Position int
}

// BuildProgressFunc is invoked roughly every 10,000 words processed during
// Build.
type BuildProgressFunc func(processed, total int)

const buildProgressInterval = 10000

// Index is the read-only, 256-bucket view of a word list, keyed by channel
// hash. It is safe for concurrent read access once Build returns.
type Index struct {
	buckets  [256][]IndexedWord
	nonEmpty *roaring.Bitmap
	byWord   map[string]int // normalized word -> Position, for resume lookups
}

// Build filters words per the room-name grammar (lowercase, trim, reject
// anything roomname.IsLegal rejects), derives (key, channelHash) for each
// survivor, and buckets it. The build is one linear pass; it is the index's
// only write phase.
func Build(words []string, onProgress BuildProgressFunc) *Index {
	idx := &Index{
		nonEmpty: roaring.New(),
		byWord:   make(map[string]int),
	}
	total := len(words)
	position := 0
	for i, raw := range words {
		word := Normalize(raw)
		if roomname.IsLegal(word) {
			key := meshcrypto.DeriveKey(word)
			hash := meshcrypto.ChannelHash(key)
			idx.buckets[hash] = append(idx.buckets[hash], IndexedWord{
				Word:     word,
				Key:      key,
				Position: position,
			})
			idx.nonEmpty.Add(uint32(hash))
			idx.byWord[word] = position
			position++
		}
		if onProgress != nil && (i+1)%buildProgressInterval == 0 {
			onProgress(i+1, total)
		}
	}
	if onProgress != nil {
		onProgress(total, total)
	}
	return idx
}

// Normalize lowercases and trims a candidate word before grammar filtering.
func Normalize(word string) string {
	return strings.TrimSpace(strings.ToLower(word))
}

// Lookup returns bucket channelHash in list order. The caller must not
// mutate the returned slice.
func (idx *Index) Lookup(channelHash byte) []IndexedWord {
	if idx == nil || !idx.nonEmpty.Contains(uint32(channelHash)) {
		return nil
	}
	return idx.buckets[channelHash]
}

// LookupFrom returns the subsequence of bucket channelHash whose Position is
// >= fromPosition, preserving list order. Used by the orchestrator to resume
// Phase B strictly after a given position.
func (idx *Index) LookupFrom(channelHash byte, fromPosition int) []IndexedWord {
	bucket := idx.Lookup(channelHash)
	if fromPosition <= 0 {
		return bucket
	}
	// bucket is sorted by Position (insertion order), so a linear scan from
	// the front is sufficient; buckets are small (expected |W|/256 entries).
	for i, w := range bucket {
		if w.Position >= fromPosition {
			return bucket[i:]
		}
	}
	return nil
}

// HasBucket reports whether channelHash has at least one indexed word,
// without allocating or returning the bucket itself.
func (idx *Index) HasBucket(channelHash byte) bool {
	return idx != nil && idx.nonEmpty.Contains(uint32(channelHash))
}

// Len returns the total number of indexed words across all buckets.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byWord)
}

// PositionOf returns the list position of word (after normalization), used
// to resolve a dictionary resume cursor. ok is false if word was not
// indexed (e.g. it failed the grammar filter, or was never in the list).
func (idx *Index) PositionOf(word string) (position int, ok bool) {
	if idx == nil {
		return 0, false
	}
	position, ok = idx.byWord[Normalize(word)]
	return position, ok
}

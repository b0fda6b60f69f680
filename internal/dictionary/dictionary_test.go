package dictionary

import (
	"testing"

	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
)

func TestBuildFiltersIllegalWords(t *testing.T) {
	idx := Build([]string{"Able", " about ", "UPPER-CASE!!", "-bad", "q81eb"}, nil)
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (Able/about/q81eb survive, the rest are rejected)", idx.Len())
	}
	if _, ok := idx.PositionOf("UPPER-CASE!!"); ok {
		t.Error("illegal word should not be indexed")
	}
	if _, ok := idx.PositionOf("able"); !ok {
		t.Error("'able' (normalized from 'Able') should be indexed")
	}
}

func TestBucketInvariant(t *testing.T) {
	idx := Build([]string{"aardvark", "able", "about", "q81eb", "zebra"}, nil)
	for hash := 0; hash < 256; hash++ {
		for _, w := range idx.Lookup(byte(hash)) {
			if got := meshcrypto.ChannelHash(w.Key); got != byte(hash) {
				t.Errorf("word %q in bucket %d has channel hash %d", w.Word, hash, got)
			}
		}
	}
}

func TestLookupFromResume(t *testing.T) {
	idx := Build([]string{"aardvark", "able", "about", "q81eb", "zebra"}, nil)

	ablePos, ok := idx.PositionOf("able")
	if !ok {
		t.Fatal("expected 'able' to be indexed")
	}
	hash := meshcrypto.ChannelHash(meshcrypto.DeriveKey("able"))

	full := idx.Lookup(hash)
	fromStart := idx.LookupFrom(hash, 0)
	if len(full) != len(fromStart) {
		t.Errorf("LookupFrom(hash, 0) should return the whole bucket")
	}

	after := idx.LookupFrom(hash, ablePos+1)
	for _, w := range after {
		if w.Word == "able" {
			t.Error("LookupFrom should exclude the resume word itself")
		}
		if w.Position <= ablePos {
			t.Errorf("LookupFrom returned a word at position %d, want > %d", w.Position, ablePos)
		}
	}
}

func TestHasBucketEmptyOnNilOrMiss(t *testing.T) {
	idx := Build(nil, nil)
	if idx.HasBucket(0) {
		t.Error("empty index should have no non-empty buckets")
	}
	var nilIdx *Index
	if nilIdx.HasBucket(0) || nilIdx.Len() != 0 {
		t.Error("nil index should behave as empty")
	}
}

func BenchmarkBuild(b *testing.B) {
	words := make([]string, 5000)
	for i := range words {
		words[i] = "word"
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Build(words, nil)
	}
}

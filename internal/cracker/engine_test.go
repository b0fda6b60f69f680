package cracker

import (
	"context"
	"testing"
	"time"

	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
	"github.com/mesh-relay/meshcrack/internal/packetcodec"
	"github.com/mesh-relay/meshcrack/internal/roomname"
)

func buildTestFrame(roomName string, message string) *packetcodec.GroupTextFrame {
	key := meshcrypto.DeriveKey(roomName)
	ciphertext := meshcrypto.Encrypt(uint32(time.Now().Unix()), "", message, key)
	return &packetcodec.GroupTextFrame{
		ChannelHash: meshcrypto.ChannelHash(key),
		Ciphertext:  ciphertext,
		CipherMac:   meshcrypto.Tag(key, ciphertext),
	}
}

func TestCrackFindsPublicRoom(t *testing.T) {
	frame := buildTestFrame(PublicRoomName, "hello world")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true

	res := e.Crack(context.Background(), frame, opts, nil)
	if !res.Found {
		t.Fatal("expected a match via phase A")
	}
	if res.RoomName != PublicRoomName {
		t.Errorf("RoomName = %q, want %q", res.RoomName, PublicRoomName)
	}
	if res.DecryptedMessage != "hello world" {
		t.Errorf("DecryptedMessage = %q, want %q", res.DecryptedMessage, "hello world")
	}
}

func TestCrackFindsDictionaryWord(t *testing.T) {
	frame := buildTestFrame("zebra", "secret")

	e := NewEngine()
	e.SetWordlist([]string{"aardvark", "zebra", "quail"}, nil)

	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.MaxLength = 0 // brute force must not be reachable; dictionary alone should find it

	res := e.Crack(context.Background(), frame, opts, nil)
	if !res.Found {
		t.Fatal("expected a dictionary match")
	}
	if res.RoomName != "zebra" {
		t.Errorf("RoomName = %q, want %q", res.RoomName, "zebra")
	}
}

func TestCrackFindsBruteForceMatch(t *testing.T) {
	// Pick a short, definitely-legal length-2 room name.
	name := "a0"
	frame := buildTestFrame(name, "found it")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 2

	res := e.Crack(context.Background(), frame, opts, nil)
	if !res.Found {
		t.Fatal("expected a brute-force match")
	}
	if res.RoomName != name {
		t.Errorf("RoomName = %q, want %q", res.RoomName, name)
	}
	if res.DecryptedMessage != "found it" {
		t.Errorf("DecryptedMessage = %q, want %q", res.DecryptedMessage, "found it")
	}
}

func TestCrackFoundViaBruteForceSetsResumeCursor(t *testing.T) {
	frame := buildTestFrame("able", "hi")

	e := NewEngine()
	e.SetWordlist([]string{"aardvark", "able", "about", "q81eb", "zebra"}, nil)

	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false // dictionary disabled: "able" must be found by brute force
	opts.StartingLength = 1
	opts.MaxLength = 5

	res := e.Crack(context.Background(), frame, opts, nil)
	if !res.Found {
		t.Fatal("expected a brute-force match")
	}
	if res.RoomName != "able" {
		t.Errorf("RoomName = %q, want %q", res.RoomName, "able")
	}
	if res.ResumeFrom != "able" {
		t.Errorf("ResumeFrom = %q, want %q", res.ResumeFrom, "able")
	}
	if res.ResumeType != StartFromBruteforce {
		t.Errorf("ResumeType = %q, want %q", res.ResumeType, StartFromBruteforce)
	}
}

func TestCrackExhaustionSetsResumeCursorPastMaxLength(t *testing.T) {
	frame := buildTestFrame("aaa", "later")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 2 // "aaa" has length 3, unreachable at this MaxLength

	res := e.Crack(context.Background(), frame, opts, nil)
	if res.Found {
		t.Fatalf("expected no match within MaxLength=2, got RoomName=%q", res.RoomName)
	}
	if res.ResumeType != StartFromBruteforce {
		t.Errorf("ResumeType = %q, want %q", res.ResumeType, StartFromBruteforce)
	}
	if res.ResumeFrom == "" {
		t.Fatal("expected a non-empty resume cursor on exhaustion")
	}

	opts2 := opts
	opts2.MaxLength = 3
	opts2.StartFromType = res.ResumeType
	opts2.StartFrom = res.ResumeFrom

	res2 := e.Crack(context.Background(), frame, opts2, nil)
	if !res2.Found {
		t.Fatal("expected raising MaxLength and resuming from the exhaustion cursor to find the match")
	}
	if res2.RoomName != "aaa" {
		t.Errorf("RoomName = %q, want %q", res2.RoomName, "aaa")
	}
}

func TestCrackNoMatchWhenSpaceExhausted(t *testing.T) {
	frame := buildTestFrame("zz", "nope")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 1 // excludes length 2, so "zz" cannot be found

	res := e.Crack(context.Background(), frame, opts, nil)
	if res.Found {
		t.Fatalf("expected no match, got RoomName=%q", res.RoomName)
	}
}

func TestCrackResumesDictionaryStrictlyAfterCursor(t *testing.T) {
	frame := buildTestFrame("quail", "hi")

	e := NewEngine()
	e.SetWordlist([]string{"aardvark", "quail", "zebra"}, nil)

	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.MaxLength = 0
	opts.StartFromType = StartFromDictionary
	opts.StartFrom = "quail" // resume strictly after quail: should skip past the match

	res := e.Crack(context.Background(), frame, opts, nil)
	if res.Found {
		t.Fatalf("expected the resumed scan to skip the already-passed word, got RoomName=%q", res.RoomName)
	}
}

func TestCrackResumesBruteForceStrictlyAfterCursor(t *testing.T) {
	// The target is the very first length-1 candidate; resuming after it
	// should not find it again via brute force.
	name, _ := roomname.IndexToRoomName(1, 0)
	frame := buildTestFrame(name, "hi")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 1
	opts.StartFromType = StartFromBruteforce
	opts.StartFrom = name

	res := e.Crack(context.Background(), frame, opts, nil)
	if res.Found {
		t.Fatalf("expected the resumed brute-force scan to skip the already-passed candidate, got RoomName=%q", res.RoomName)
	}
}

func TestCrackHonorsAbort(t *testing.T) {
	// A target that brute force will not reach quickly, so there is a wide
	// window in which a concurrent Abort() call takes effect mid-search.
	frame := buildTestFrame("zzzzzzzz", "never reached")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 8

	results := make(chan Result, 1)
	go func() {
		results <- e.Crack(context.Background(), frame, opts, nil)
	}()

	time.Sleep(10 * time.Millisecond)
	e.Abort()

	select {
	case res := <-results:
		if !res.Aborted {
			t.Fatal("expected Aborted=true after Abort() was called mid-search")
		}
		if res.Found {
			t.Fatal("an aborted crack must not report a match")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Crack did not return within 10s of Abort() being called")
	}
}

func TestCrackHonorsContextCancellation(t *testing.T) {
	frame := buildTestFrame("zzzzzzzz", "never reached")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 8

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Crack(ctx, frame, opts, nil)
	if !res.Aborted {
		t.Fatal("expected Aborted=true for an already-cancelled context")
	}
}

func TestCrackBackendsAgree(t *testing.T) {
	name := "ab"
	frame := buildTestFrame(name, "same result")

	portable := NewEngine()
	optsPortable := DefaultOptions()
	optsPortable.ForceCPU = true
	optsPortable.UseDictionary = false
	optsPortable.StartingLength = 1
	optsPortable.MaxLength = 2
	resPortable := portable.Crack(context.Background(), frame, optsPortable, nil)

	accelerated := NewEngine()
	optsAccel := optsPortable
	optsAccel.ForceCPU = false
	resAccel := accelerated.Crack(context.Background(), frame, optsAccel, nil)

	if !resPortable.Found {
		t.Fatal("portable backend did not find the match")
	}
	if !accelerated.IsGPUAvailable() {
		t.Skip("host has no usable parallelism for the accelerator backend")
	}
	if resAccel.RoomName != resPortable.RoomName || resAccel.Key != resPortable.Key {
		t.Errorf("accelerator result %+v disagrees with portable result %+v", resAccel, resPortable)
	}
}

func TestCrackReportsProgress(t *testing.T) {
	frame := buildTestFrame("zz", "unreachable at length 1")

	e := NewEngine()
	opts := DefaultOptions()
	opts.ForceCPU = true
	opts.UseDictionary = false
	opts.StartingLength = 1
	opts.MaxLength = 1

	var reports int
	e.Crack(context.Background(), frame, opts, func(p ProgressReport) {
		reports++
		if p.Phase != "bruteforce" {
			t.Errorf("Phase = %q, want %q", p.Phase, "bruteforce")
		}
	})
	// With only 36 length-1 candidates and a >=200ms throttle, zero or one
	// report is expected; the important property is that the callback never
	// panics and, if invoked, carries the right phase label.
}

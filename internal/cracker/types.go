// Package cracker implements the search orchestrator: it sequences the
// public-room, dictionary, and brute-force phases, threads resume state
// through them, reports progress, and honors cancellation.
package cracker

import "time"

// StartFromType names which phase a resume cursor applies to.
type StartFromType string

const (
	// StartFromNone means "start fresh"; all three phases run in order.
	StartFromNone StartFromType = ""
	// StartFromDictionary resumes Phase B strictly after the given word and
	// skips Phase A.
	StartFromDictionary StartFromType = "dictionary"
	// StartFromBruteforce resumes Phase C strictly after the given name and
	// skips Phases A and B.
	StartFromBruteforce StartFromType = "bruteforce"
)

// Options configures a single Crack call.
type Options struct {
	MaxLength          int
	StartingLength     int
	UseDictionary      bool
	UseTimestampFilter bool
	ValidSeconds       int64
	UseUTF8Filter      bool
	UseSenderFilter    bool
	StartFrom          string
	StartFromType      StartFromType
	ForceCPU           bool
	GPUDispatchMs      int64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxLength:          8,
		StartingLength:     1,
		UseDictionary:      true,
		UseTimestampFilter: true,
		ValidSeconds:       2592000,
		UseUTF8Filter:      true,
		UseSenderFilter:    false,
		StartFromType:      StartFromNone,
		ForceCPU:           false,
		GPUDispatchMs:      1000,
	}
}

// ProgressReport is emitted at >=200ms intervals during Phase B and Phase C.
type ProgressReport struct {
	Phase    string // "dictionary" or "bruteforce"
	Length   int    // current brute-force length; 0 outside Phase C
	Position uint64 // current offset within the current length/bucket
	Checked  uint64 // cumulative candidates inspected this crack call
	Total    uint64 // size of the space being scanned in the current phase/length
	Rate     float64
	ETA      time.Duration
	Elapsed  time.Duration
}

// ProgressFunc receives progress reports; it may be nil.
type ProgressFunc func(ProgressReport)

// Result is the outcome of a Crack call.
type Result struct {
	Found             bool
	RoomName          string
	Key               [16]byte
	DecryptedMessage  string
	Aborted           bool
	ResumeFrom        string
	ResumeType        StartFromType
	Error             string
}

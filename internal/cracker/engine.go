package cracker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mesh-relay/meshcrack/internal/dictionary"
	"github.com/mesh-relay/meshcrack/internal/executor"
	"github.com/mesh-relay/meshcrack/internal/filter"
	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
	"github.com/mesh-relay/meshcrack/internal/packetcodec"
)

// PublicRoomName is the single well-known channel tried in Phase A.
const PublicRoomName = "[[public room]]"

// portableInitialBatchSize is the Portable backend's fixed per-dispatch
// batch size; Portable is never auto-tuned.
const portableInitialBatchSize = 1 << 14

// Engine owns the backends, the dictionary index, and the cancellation flag
// for the duration of a crack call. Only one crack may be in flight per
// Engine instance.
type Engine struct {
	dict      *dictionary.Index
	cancelled atomic.Bool
}

// NewEngine constructs an Engine with no word list loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// SetWordlist replaces the dictionary index built from words.
func (e *Engine) SetWordlist(words []string, onProgress dictionary.BuildProgressFunc) {
	e.dict = dictionary.Build(words, onProgress)
}

// IsGPUAvailable reports whether the accelerator backend can initialize on
// this host.
func (e *Engine) IsGPUAvailable() bool {
	a := executor.NewAccelerator(0)
	ok := a.Init() == nil
	a.Destroy()
	return ok
}

// Abort raises the cancellation flag; it is safe to call from any
// goroutine and takes effect within one batch (Phase C) or one dictionary
// entry (Phase B).
func (e *Engine) Abort() {
	e.cancelled.Store(true)
}

// Destroy releases backend resources. Safe to call even if no crack ever
// ran.
func (e *Engine) Destroy() {
	e.dict = nil
}

func (e *Engine) resetCancellation() {
	e.cancelled.Store(false)
}

func (e *Engine) isCancelled() bool {
	return e.cancelled.Load()
}

// selectBackend resolves the backend once per crack: the accelerator is
// preferred unless forceCPU is set or it fails to initialize, in which case
// the orchestrator transparently falls back to Portable. Backend-init
// failure is never surfaced to the caller.
func selectBackend(forceCPU bool) executor.Backend {
	if !forceCPU {
		accel := executor.NewAccelerator(0)
		if accel.Init() == nil {
			return accel
		}
		accel.Destroy()
	}
	portable := executor.NewPortable()
	_ = portable.Init()
	return portable
}

// Crack runs the three-phase search (public room, dictionary, brute force)
// against an already-decoded group-text frame.
func (e *Engine) Crack(ctx context.Context, frame *packetcodec.GroupTextFrame, opts Options, onProgress ProgressFunc) Result {
	e.resetCancellation()

	backend := selectBackend(opts.ForceCPU)
	defer backend.Destroy()

	filterCfg := filter.Config{
		UseTimestampFilter: opts.UseTimestampFilter,
		ValidSeconds:       opts.ValidSeconds,
		UseUTF8Filter:      opts.UseUTF8Filter,
		UseSenderFilter:    opts.UseSenderFilter,
	}

	run := &crackRun{
		engine:     e,
		backend:    backend,
		frame:      frame,
		opts:       opts,
		filterCfg:  filterCfg,
		onProgress: onProgress,
		start:      time.Now(),
		throttle:   newThrottler(),
	}

	if opts.StartFromType == StartFromNone {
		if res, done := run.phaseA(ctx); done {
			return res
		}
	}

	if opts.StartFromType != StartFromBruteforce {
		if res, done := run.phaseB(ctx); done {
			return res
		}
	}

	return run.phaseC(ctx)
}

// crackRun carries the mutable state of a single Crack call.
type crackRun struct {
	engine     *Engine
	backend    executor.Backend
	frame      *packetcodec.GroupTextFrame
	opts       Options
	filterCfg  filter.Config
	onProgress ProgressFunc
	start      time.Time
	throttle   *throttler
	checked    uint64
}

func (r *crackRun) report(phase string, length int, position, total uint64) {
	if r.onProgress == nil {
		return
	}
	now := time.Now()
	if !r.throttle.due(now) {
		return
	}
	elapsed := now.Sub(r.start)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(r.checked) / elapsed.Seconds()
	}
	var eta time.Duration
	if rate > 0 && total > position {
		eta = time.Duration(float64(total-position)/rate) * time.Second
	}
	r.onProgress(ProgressReport{
		Phase:    phase,
		Length:   length,
		Position: position,
		Checked:  r.checked,
		Total:    total,
		Rate:     rate,
		ETA:      eta,
		Elapsed:  elapsed,
	})
}

func (r *crackRun) runFilters(key meshcrypto.Key) (Result, bool) {
	accepted, ok := filter.Run(r.frame, key, r.filterCfg)
	if !ok {
		return Result{}, false
	}
	return Result{
		Found:            true,
		Key:              key,
		DecryptedMessage: accepted.Message,
	}, true
}

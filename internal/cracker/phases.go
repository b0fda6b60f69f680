package cracker

import (
	"context"
	"time"

	"github.com/mesh-relay/meshcrack/internal/executor"
	"github.com/mesh-relay/meshcrack/internal/meshcrypto"
	"github.com/mesh-relay/meshcrack/internal/roomname"
)

// phaseA tries the single well-known public room name. done is true when
// the call should return immediately (either a match was found or the
// caller asked for cancellation).
func (r *crackRun) phaseA(ctx context.Context) (Result, bool) {
	if ctxDone(ctx) || r.engine.isCancelled() {
		return r.abortedResult(StartFromNone, ""), true
	}

	key := meshcrypto.DeriveKey(PublicRoomName)
	if meshcrypto.ChannelHash(key) != r.frame.ChannelHash {
		return Result{}, false
	}
	if !meshcrypto.Verify(r.frame.Ciphertext, r.frame.CipherMac, key) {
		return Result{}, false
	}
	r.checked++
	if res, ok := r.runFilters(key); ok {
		res.RoomName = PublicRoomName
		// PublicRoomName is not a legal room name, so PositionOf will
		// never find it: a resumed phaseB falls back to the start of the
		// dictionary, which is exactly the next phase after phase A.
		res.ResumeFrom = PublicRoomName
		res.ResumeType = StartFromDictionary
		return res, true
	}
	return Result{}, false
}

// phaseB scans the dictionary bucket matching the frame's channel hash, in
// list-position order, honoring a dictionary resume cursor. done is true
// when a match was found or the call was cancelled.
func (r *crackRun) phaseB(ctx context.Context) (Result, bool) {
	if !r.opts.UseDictionary || r.engine.dict == nil {
		return Result{}, false
	}

	fromPosition := 0
	if r.opts.StartFromType == StartFromDictionary && r.opts.StartFrom != "" {
		if pos, ok := r.engine.dict.PositionOf(r.opts.StartFrom); ok {
			fromPosition = pos + 1
		}
	}

	bucket := r.engine.dict.LookupFrom(r.frame.ChannelHash, fromPosition)
	total := uint64(len(bucket))

	// The cursor must point strictly after the last word actually
	// inspected; before the first inspection that is the incoming cursor
	// (or empty, meaning "restart the dictionary from the top").
	last := ""
	if r.opts.StartFromType == StartFromDictionary {
		last = r.opts.StartFrom
	}

	for i, w := range bucket {
		if ctxDone(ctx) || r.engine.isCancelled() {
			return r.abortedResult(StartFromDictionary, last), true
		}

		r.checked++
		last = w.Word
		if meshcrypto.Verify(r.frame.Ciphertext, r.frame.CipherMac, w.Key) {
			if res, ok := r.runFilters(w.Key); ok {
				res.RoomName = w.Word
				res.ResumeFrom = w.Word
				res.ResumeType = StartFromDictionary
				return res, true
			}
		}
		r.report("dictionary", 0, uint64(i+1), total)
	}
	return Result{}, false
}

// phaseC drives the batch executor across every candidate length from the
// resume point (or StartingLength) through MaxLength, auto-tuning the batch
// size after the first full-size accelerator dispatch.
func (r *crackRun) phaseC(ctx context.Context) Result {
	startLength := r.opts.StartingLength
	var startOffset uint64

	if r.opts.StartFromType == StartFromBruteforce && r.opts.StartFrom != "" {
		startLength, startOffset = bruteforceResumePoint(r.opts.StartFrom, r.opts.StartingLength, r.opts.MaxLength)
	}

	tuner := executor.NewTuner(portableInitialBatchSize, time.Duration(r.opts.GPUDispatchMs)*time.Millisecond)
	tunable := r.backend.Name() == "accelerator"

	for length := startLength; length <= r.opts.MaxLength; length++ {
		total := roomname.CountNamesForLength(length)

		offset := uint64(0)
		if length == startLength {
			offset = startOffset
		}

		for offset < total {
			if ctxDone(ctx) || r.engine.isCancelled() {
				if name, ok := bruteforceCursorName(length, offset); ok {
					return r.abortedResult(StartFromBruteforce, name)
				}
				// Nothing dispatched at this length yet: the incoming
				// cursor (if any) is still the right resume point.
				return r.abortedResult(StartFromBruteforce, r.opts.StartFrom)
			}

			batchSize := uint64(portableInitialBatchSize)
			if tunable {
				batchSize = tuner.BatchSize()
			}
			if remaining := total - offset; batchSize > remaining {
				batchSize = remaining
			}

			in := executor.DispatchInput{
				TargetHash: r.frame.ChannelHash,
				Length:     length,
				Offset:     offset,
				BatchSize:  batchSize,
				Ciphertext: r.frame.Ciphertext,
				Tag:        r.frame.CipherMac,
			}

			dispatchStart := time.Now()
			matches, evaluated, err := r.backend.Dispatch(ctx, in)
			elapsed := time.Since(dispatchStart)
			if tunable && err == nil && evaluated == batchSize {
				tuner.Observe(batchSize, elapsed)
			}

			// Matches are checked even when the dispatch was cut short by
			// cancellation: a tag-verified hit found moments before the
			// cut must not be lost.
			for _, m := range matches {
				if res, ok := r.runFilters(m.Key); ok {
					name, _ := roomname.IndexToRoomName(length, offset+m.Index)
					res.RoomName = name
					res.ResumeFrom = name
					res.ResumeType = StartFromBruteforce
					return res
				}
			}

			// Advance only past the contiguous prefix the backend actually
			// inspected, so an abort cursor built from offset never skips
			// candidates a cut-short dispatch left unevaluated.
			r.checked += evaluated
			offset += evaluated
			r.report("bruteforce", length, offset, total)
		}
	}

	// The whole space through MaxLength is exhausted: hand back a cursor
	// past its end, so raising MaxLength and resuming continues straight
	// into the newly opened lengths instead of rescanning from scratch.
	resumeFrom, resumeType := r.opts.StartFrom, r.opts.StartFromType
	if r.opts.MaxLength >= startLength {
		if name, ok := bruteforceCursorName(r.opts.MaxLength, roomname.CountNamesForLength(r.opts.MaxLength)); ok {
			resumeFrom, resumeType = name, StartFromBruteforce
		}
	}
	return Result{Found: false, ResumeFrom: resumeFrom, ResumeType: resumeType}
}

func (r *crackRun) abortedResult(resumeType StartFromType, resumeFrom string) Result {
	return Result{
		Aborted:    true,
		ResumeFrom: resumeFrom,
		ResumeType: resumeType,
	}
}

func ctxDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

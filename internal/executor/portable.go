package executor

import "context"

// Portable is the single-threaded, synchronous backend: a straight loop
// over the batch applying the grammar skip, hash check, and tag check in
// order. It is always available and never auto-tuned.
type Portable struct{}

// NewPortable constructs the portable backend.
func NewPortable() *Portable {
	return &Portable{}
}

// Init always succeeds; Portable has no external resources to acquire.
func (p *Portable) Init() error { return nil }

// Dispatch evaluates the batch sequentially, honoring ctx cancellation
// between candidates so a very large batch size cannot starve
// cancellation.
func (p *Portable) Dispatch(ctx context.Context, in DispatchInput) ([]Match, uint64, error) {
	matches := make([]Match, 0, 8)
	for i := uint64(0); i < in.BatchSize; i++ {
		select {
		case <-ctx.Done():
			return matches, i, ctx.Err()
		default:
		}
		key, ok := evaluateCandidate(in, in.Offset+i)
		if !ok {
			continue
		}
		// Surplus matches beyond the output buffer are dropped, not a
		// reason to stop scanning: evaluated must stay the full batch.
		if len(matches) < MaxMatchesPerDispatch {
			matches = append(matches, Match{Index: i, Key: key})
		}
	}
	return matches, in.BatchSize, nil
}

// Name identifies this backend.
func (p *Portable) Name() string { return "portable" }

// Destroy is a no-op; Portable owns no resources.
func (p *Portable) Destroy() {}

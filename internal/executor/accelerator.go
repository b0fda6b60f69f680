package executor

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// ErrNoParallelism is returned by Accelerator.Init when the host has no
// usable parallel backend (a single logical core); the orchestrator treats
// this exactly like any other backend-initialization failure and falls
// back to Portable.
var ErrNoParallelism = errors.New("executor: no parallel backend available")

// Accelerator is the data-parallel backend: a CPU worker pool standing in
// for a compute-shader dispatch. A batch is split into per-core sub-ranges,
// each evaluated by a goroutine, with matches appended to a shared,
// capacity-bounded slice -- the host-side analogue of an append-only buffer
// guarded by an atomic counter.
type Accelerator struct {
	workers int
}

// NewAccelerator constructs the accelerator backend. workers, if 0,
// defaults to the host's logical core count as reported by cpuid.
func NewAccelerator(workers int) *Accelerator {
	return &Accelerator{workers: workers}
}

// Init reports failure when fewer than two logical cores are usable --
// there is no point splitting a batch across a single core.
func (a *Accelerator) Init() error {
	if a.workers <= 0 {
		a.workers = cpuid.CPU.LogicalCores
	}
	if a.workers < 2 {
		return ErrNoParallelism
	}
	return nil
}

// Dispatch partitions the batch into a.workers contiguous sub-ranges and
// evaluates them concurrently. The host blocks on all workers finishing
// before returning, the equivalent of an asynchronous host-side read-back
// after a dispatch completes.
//
// On cancellation, each worker stops where it stands, so the sub-ranges end
// at different points; the reported evaluated count is the contiguous
// prefix of the batch covered by every worker up to the first gap. The
// candidates past that prefix are re-inspected on resume, which at worst
// re-finds a match the caller has already seen.
func (a *Accelerator) Dispatch(ctx context.Context, in DispatchInput) ([]Match, uint64, error) {
	if in.BatchSize == 0 {
		return nil, 0, nil
	}
	workers := a.workers
	if uint64(workers) > in.BatchSize {
		workers = int(in.BatchSize)
	}
	chunk := in.BatchSize / uint64(workers)
	if chunk == 0 {
		chunk = 1
		workers = int(in.BatchSize)
	}

	type subRange struct {
		start, end uint64
		done       uint64 // next unevaluated index, == end when complete
	}
	ranges := make([]subRange, 0, workers)
	for w := 0; w < workers; w++ {
		start := uint64(w) * chunk
		end := start + chunk
		if w == workers-1 {
			end = in.BatchSize
		}
		if start < end {
			ranges = append(ranges, subRange{start: start, end: end, done: start})
		}
	}

	var (
		mu      sync.Mutex
		matches = make([]Match, 0, 8)
		wg      sync.WaitGroup
	)

	for r := range ranges {
		wg.Add(1)
		go func(r *subRange) {
			defer wg.Done()
			local := make([]Match, 0, 4)
			i := r.start
		scan:
			for ; i < r.end; i++ {
				select {
				case <-ctx.Done():
					break scan
				default:
				}
				key, ok := evaluateCandidate(in, in.Offset+i)
				if !ok {
					continue
				}
				local = append(local, Match{Index: i, Key: key})
			}
			r.done = i
			if len(local) == 0 {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			// Surplus matches beyond the output buffer are dropped, not a
			// reason to stop scanning: evaluated must stay honest.
			for _, m := range local {
				if len(matches) >= MaxMatchesPerDispatch {
					break
				}
				matches = append(matches, m)
			}
		}(&ranges[r])
	}

	wg.Wait()

	// Workers finish in arbitrary order; sort so both backends hand the
	// orchestrator the lowest-index match first.
	sort.Slice(matches, func(i, j int) bool { return matches[i].Index < matches[j].Index })

	evaluated := in.BatchSize
	for _, r := range ranges {
		if r.done < r.end {
			evaluated = r.done
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return matches, evaluated, err
	}
	return matches, evaluated, nil
}

// Name identifies this backend.
func (a *Accelerator) Name() string { return "accelerator" }

// Destroy releases no resources; the worker pool is created and torn down
// per dispatch. A persistent pipeline (command queue, uniform buffers) is
// the real accelerator's shape, not a goroutine pool's.
func (a *Accelerator) Destroy() {}

package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	DefaultSize   = 1024
	DefaultCycles = 1024 * 8
)

type Options struct {
	// Size is the number of complex values; must be a power of two.
	Size int
	// Cycles is the number of forward+inverse transform pairs.
	Cycles int
	// Rand seeds the input vector. A nil Rand uses a randomly seeded source.
	Rand *rand.Rand
}

type Result struct {
	Elapsed time.Duration `json:"elapsedNs"`
	Flops   float64       `json:"flops"`
	Size    int           `json:"size"`
	Cycles  int           `json:"cycles"`
}

// Millis reports the elapsed time with microsecond resolution.
func (r Result) Millis() float64 {
	return float64(r.Elapsed.Microseconds()) * 0.001
}

func (r Result) String() string {
	return fmt.Sprintf("used: %v ms, result: %v", r.Millis(), r.Flops)
}

// RandomVector returns n values drawn uniformly from [1, 100).
func RandomVector(n int, rng *rand.Rand) []float64 {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 + rng.Float64()*99
	}
	return out
}

// MeasureFFT transforms a random vector of n complex values back and forth
// cycles times and returns the flop estimate of a single transform.
func MeasureFFT(ctx context.Context, n, cycles int, rng *rand.Rand) (float64, error) {
	if _, err := log2(n); err != nil {
		return 0, err
	}
	x := RandomVector(2*n, rng)
	for i := 0; i < cycles; i++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("BENCH_CANCELED: after %d cycles: %w", i, err)
		}
		if err := FFTTransform(x); err != nil {
			return 0, err
		}
		if err := FFTInverse(x); err != nil {
			return 0, err
		}
	}
	return FFTNumFlops(n), nil
}

// Run executes the FFT kernel under a scoped timer.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Size == 0 {
		opts.Size = DefaultSize
	}
	if opts.Cycles == 0 {
		opts.Cycles = DefaultCycles
	}
	timer := StartTimer("fft")
	flops, err := MeasureFFT(ctx, opts.Size, opts.Cycles, opts.Rand)
	if err != nil {
		return Result{}, err
	}
	return Result{Elapsed: timer.Elapsed(), Flops: flops, Size: opts.Size, Cycles: opts.Cycles}, nil
}

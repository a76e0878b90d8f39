// Package bench holds the CPU workload that is executed while a PGO
// training profile is being recorded.
//
// The kernel is the SciMark 2 FFT: an in-place radix-2 complex transform
// over interleaved (real, imag) pairs.
package bench

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotPowerOfTwo is returned when the complex length of the data is not a power of two.
var ErrNotPowerOfTwo = errors.New("BENCH_FFT_LENGTH: data length is not a power of 2")

// FFTNumFlops estimates the floating point operations of one transform of n
// complex values. There is no work to estimate for n <= 0.
func FFTNumFlops(n int) float64 {
	if n <= 0 {
		return 0
	}
	nd := float64(n)
	logN, err := log2(n)
	if err != nil {
		// Non powers of two still get an estimate from the next power up.
		logN = int(math.Ceil(math.Log2(nd)))
	}
	return (5.0*nd-2)*float64(logN) + 2*(nd+1)
}

// FFTTransform runs the forward transform in place.
func FFTTransform(data []float64) error {
	return transform(data, -1)
}

// FFTInverse runs the backward transform in place and normalizes by 1/n.
func FFTInverse(data []float64) error {
	if err := transform(data, +1); err != nil {
		return err
	}
	n := len(data) / 2
	if n == 0 {
		return nil
	}
	norm := 1 / float64(n)
	for i := range data {
		data[i] *= norm
	}
	return nil
}

func log2(n int) (int, error) {
	k, lg := 1, 0
	for k < n {
		k *= 2
		lg++
	}
	if n != 1<<lg {
		return 0, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}
	return lg, nil
}

func transform(data []float64, direction int) error {
	if len(data)%2 != 0 {
		return fmt.Errorf("%w: odd slice length %d", ErrNotPowerOfTwo, len(data))
	}
	n := len(data) / 2
	if n <= 1 {
		return nil
	}
	logn, err := log2(n)
	if err != nil {
		return err
	}

	bitReverse(data)

	// log2(n) butterfly passes
	dual := 1
	for bit := 0; bit < logn; bit, dual = bit+1, dual*2 {
		wReal, wImag := 1.0, 0.0

		theta := 2.0 * float64(direction) * math.Pi / (2.0 * float64(dual))
		s := math.Sin(theta)
		t := math.Sin(theta / 2.0)
		s2 := 2.0 * t * t

		for b := 0; b < n; b += 2 * dual {
			i := 2 * b
			j := 2 * (b + dual)

			wdReal := data[j]
			wdImag := data[j+1]

			data[j] = data[i] - wdReal
			data[j+1] = data[i+1] - wdImag
			data[i] += wdReal
			data[i+1] += wdImag
		}

		for a := 1; a < dual; a++ {
			// w <- exp(i*theta) * w via trigonometric recurrence
			wReal, wImag = wReal-s*wImag-s2*wReal, wImag+s*wReal-s2*wImag

			for b := 0; b < n; b += 2 * dual {
				i := 2 * (b + a)
				j := 2 * (b + a + dual)

				z1Real := data[j]
				z1Imag := data[j+1]

				wdReal := wReal*z1Real - wImag*z1Imag
				wdImag := wReal*z1Imag + wImag*z1Real

				data[j] = data[i] - wdReal
				data[j+1] = data[i+1] - wdImag
				data[i] += wdReal
				data[i+1] += wdImag
			}
		}
	}
	return nil
}

// bitReverse permutes complex pairs into bit-reversed index order (Goldrader).
func bitReverse(data []float64) {
	n := len(data) / 2
	nm1 := n - 1
	j := 0
	for i := 0; i < nm1; i++ {
		ii := i << 1
		jj := j << 1
		k := n >> 1

		if i < j {
			data[ii], data[jj] = data[jj], data[ii]
			data[ii+1], data[jj+1] = data[jj+1], data[ii+1]
		}

		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}
}

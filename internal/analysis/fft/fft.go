// Package fft implements an in-place iterative radix-2 decimation-in-time Fourier transform over
// split real/imaginary slices.
package fft

import (
	"fmt"
	"math"

	"github.com/farcloser/ringdown/internal/types"
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two greater than or equal to n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}

// Transform replaces re and im with their discrete Fourier transform (or its inverse).
// Both slices must have the same power-of-two length. The inverse pass is scaled by 1/n, so a
// forward pass followed by an inverse pass reproduces the input.
func Transform(re, im []float64, inverse bool) error {
	n := len(re)
	if len(im) != n {
		return fmt.Errorf("%w: real/imaginary length mismatch (%d vs %d)", types.ErrInvalidInput, n, len(im))
	}

	if !IsPowerOfTwo(n) {
		return fmt.Errorf("%w: transform length %d is not a power of two", types.ErrInvalidInput, n)
	}

	bitReverse(re, im)

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		theta := sign * 2 * math.Pi / float64(size)

		// Twiddle recurrence: w(k+1) = w(k) * e^(i*theta).
		// sin^2(theta/2) form keeps the increment accurate for small angles.
		alpha := -2 * math.Pow(math.Sin(theta/2), 2)
		beta := math.Sin(theta)

		wr, wi := 1.0, 0.0

		for k := range half {
			for start := 0; start < n; start += size {
				a := start + k
				b := a + half

				tr := wr*re[b] - wi*im[b]
				ti := wr*im[b] + wi*re[b]

				re[b] = re[a] - tr
				im[b] = im[a] - ti
				re[a] += tr
				im[a] += ti
			}

			wr, wi = wr+(wr*alpha-wi*beta), wi+(wi*alpha+wr*beta)
		}
	}

	if inverse {
		scale := 1 / float64(n)
		for i := range n {
			re[i] *= scale
			im[i] *= scale
		}
	}

	return nil
}

func bitReverse(re, im []float64) {
	n := len(re)
	j := 0

	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}

		j ^= bit

		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
}

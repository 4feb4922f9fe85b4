/*package shade turns gridded elevation-like fields into smoothed planes and
hill shading which can be layered over a map.

Planes are row-major rows x cols slices, the same layout a two dimensional
gogrid.Field uses for one of its components. Missing cells are NaN and are
skipped by every filter here rather than being propagated into their
neighbors.
*/
package shade

import (
	"math"

	"github.com/phil-mansfield/gogrid/errs"
)

// DefaultTruncate is the number of standard deviations at which Gaussian
// kernels are cut off.
const DefaultTruncate = 4.0

// Kernel is a 1D smoothing kernel corresponding to some smoothing strategy
// and some window width.
type Kernel struct {
	cs     []float64
	center int
}

// BoundaryCondition is a flag representing the rule used when the smoothing
// window extends outside the data range.
type BoundaryCondition int

const (
	// Reflection mirrors about the edge: b a | a b c d | d c.
	Reflection BoundaryCondition = iota
	// Periodic wraps around: d | a b c d | a.
	Periodic
	// ZeroPad treats everything outside as 0.
	ZeroPad
	// Extension repeats the edge value: a a | a b c d | d d.
	Extension
)

func (b BoundaryCondition) check() error {
	if b < Reflection || b > Extension {
		return errs.Validation("unknown boundary condition %d", b)
	}
	return nil
}

// Get returns the value in xs that corresponds to the index i, which may lie
// outside xs.
func (b BoundaryCondition) Get(xs []float64, i int) float64 {
	n := len(xs)
	if i >= 0 && i < n { return xs[i] }

	switch b {
	case Periodic:
		return xs[mod(i, n)]
	case Reflection:
		m := mod(i, 2*n)
		if m >= n { m = 2*n - 1 - m }
		return xs[m]
	case ZeroPad:
		return 0
	case Extension:
		if i < 0 { return xs[0] }
		return xs[n-1]
	}
	panic("Impossible")
}

func mod(i, n int) int {
	m := i % n
	if m < 0 { m += n }
	return m
}

// NewGaussianKernel creates a Gaussian kernel, exp(-x^2 / (2 sigma^2)), with
// the given odd window width and point separation dx.
func NewGaussianKernel(width int, sigma, dx float64) (*Kernel, error) {
	if width%2 != 1 || width < 1 {
		return nil, errs.Validation("kernel width must be odd, got %d", width)
	} else if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errs.Validation("kernel sigma must be positive, got %g", sigma)
	}

	k := &Kernel{cs: make([]float64, width), center: width / 2}
	for i := 0; i <= k.center; i++ {
		x := float64(i-k.center) * dx
		k.cs[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	// Gaussians are symmetric: no need to compute again.
	for i := k.center + 1; i < len(k.cs); i++ {
		k.cs[i] = k.cs[len(k.cs)-1-i]
	}

	k.normalize()
	return k, nil
}

// GaussianWidth returns the window width of a Gaussian kernel with the given
// sigma, in units of the point spacing, truncated at DefaultTruncate sigma.
func GaussianWidth(sigma float64) int {
	return 2*int(DefaultTruncate*sigma+0.5) + 1
}

// NewTophatKernel creates a constant smoothing kernel of the given width.
func NewTophatKernel(width int) (*Kernel, error) {
	if width%2 != 1 || width < 1 {
		return nil, errs.Validation("kernel width must be odd, got %d", width)
	}

	k := &Kernel{cs: make([]float64, width), center: width / 2}
	for i := range k.cs { k.cs[i] = 1 }

	k.normalize()
	return k, nil
}

// Filter is the shape of a smoothing kernel.
type Filter int

const (
	// Gaussian weights points by exp(-x^2 / (2 sigma^2)) out to
	// DefaultTruncate sigma.
	Gaussian Filter = iota
	// Tophat weights every point within sigma of the center equally.
	Tophat
)

// Kernel returns a kernel of this shape with a scale of sigma points.
func (f Filter) Kernel(sigma float64) (*Kernel, error) {
	switch f {
	case Gaussian:
		return NewGaussianKernel(GaussianWidth(sigma), sigma, 1)
	case Tophat:
		if !(sigma >= 0) || math.IsInf(sigma, 0) {
			return nil, errs.Validation("tophat half-width must be finite, got %g", sigma)
		}
		return NewTophatKernel(2*int(sigma+0.5) + 1)
	}
	return nil, errs.Validation("unknown filter %d", f)
}

func (k *Kernel) normalize() {
	sum := 0.0
	for _, c := range k.cs { sum += c }
	for i := range k.cs { k.cs[i] /= sum }
}

// Coefficients returns a copy of the kernel's weights.
func (k *Kernel) Coefficients() []float64 {
	return append([]float64(nil), k.cs...)
}

// ConvolveAt convolves xs with the kernel and writes the result to out,
// which must not alias xs. NaN entries of xs are left out of the weighted
// sum and the remaining weights are renormalized; NaN entries stay NaN.
//
// Make sure that xs corresponds to some uniformly-spaced sequence.
func (k *Kernel) ConvolveAt(xs []float64, b BoundaryCondition, out []float64) {
	if len(xs) == 0 { return }

	for i := range xs {
		if math.IsNaN(xs[i]) {
			out[i] = math.NaN()
			continue
		}

		sum, norm := 0.0, 0.0
		for j, c := range k.cs {
			x := b.Get(xs, i+j-k.center)
			if math.IsNaN(x) { continue }
			sum += x * c
			norm += c
		}
		out[i] = sum / norm
	}
}

package reduce

import (
	"errors"
	"fmt"

	"github.com/poiesic/dirtycat/core"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted indicates Transform was called before Fit.
	ErrNotFitted = errors.New("svd is not fitted")

	// ErrFactorizationFailed indicates the SVD factorization did not converge.
	ErrFactorizationFailed = errors.New("svd factorization failed")

	// ErrDimensionMismatch indicates input columns do not match the fitted
	// feature count.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// TruncatedSVD reduces row vectors to their projection onto the top-k right
// singular vectors of the fitted matrix.
type TruncatedSVD struct {
	components int
	basis      *mat.Dense // features × components
	singular   []float64
	fitted     bool
}

// New creates an unfitted TruncatedSVD with the given component count.
func New(components int) (*TruncatedSVD, error) {
	if components < 1 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidComponents, components)
	}
	return &TruncatedSVD{components: components}, nil
}

// Restore rebuilds a fitted TruncatedSVD from stored component rows
// (components × features) and singular values.
func Restore(components [][]float64, singular []float64) (*TruncatedSVD, error) {
	k := len(components)
	if k < 1 {
		return nil, fmt.Errorf("%w: empty basis", core.ErrInvalidComponents)
	}
	if len(singular) != k {
		return nil, fmt.Errorf("%w: %d singular values for %d components",
			core.ErrInvalidComponents, len(singular), k)
	}
	features := len(components[0])
	basis := mat.NewDense(features, k, nil)
	for r, row := range components {
		if len(row) != features {
			return nil, fmt.Errorf("%w: ragged basis", core.ErrInvalidComponents)
		}
		for c, val := range row {
			basis.Set(c, r, val)
		}
	}
	return &TruncatedSVD{
		components: k,
		basis:      basis,
		singular:   append([]float64(nil), singular...),
		fitted:     true,
	}, nil
}

// Fit factorizes x and keeps the top-k right singular vectors. The
// component count must be smaller than both dimensions of x, matching the
// truncated (arpack-style) decomposition contract.
func (t *TruncatedSVD) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	limit := min(rows, cols)
	if t.components >= limit {
		return fmt.Errorf("%w: %d components for a %dx%d matrix",
			core.ErrInvalidComponents, t.components, rows, cols)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return ErrFactorizationFailed
	}

	var v mat.Dense
	svd.VTo(&v)
	t.basis = mat.DenseCopyOf(v.Slice(0, cols, 0, t.components))

	values := svd.Values(nil)
	t.singular = values[:t.components]
	t.fitted = true
	return nil
}

// Transform projects the rows of x onto the fitted components, returning a
// rows(x) × components matrix.
func (t *TruncatedSVD) Transform(x mat.Matrix) (*mat.Dense, error) {
	if !t.fitted {
		return nil, ErrNotFitted
	}
	_, cols := x.Dims()
	features, _ := t.basis.Dims()
	if cols != features {
		return nil, fmt.Errorf("%w: %d columns, fitted on %d features",
			ErrDimensionMismatch, cols, features)
	}
	var out mat.Dense
	out.Mul(x, t.basis)
	return &out, nil
}

// FitTransform fits on x and returns its projection.
func (t *TruncatedSVD) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := t.Fit(x); err != nil {
		return nil, err
	}
	return t.Transform(x)
}

// Components returns the fitted basis as component rows
// (components × features).
func (t *TruncatedSVD) Components() [][]float64 {
	if !t.fitted {
		return nil
	}
	features, k := t.basis.Dims()
	out := make([][]float64, k)
	for r := 0; r < k; r++ {
		out[r] = make([]float64, features)
		for c := 0; c < features; c++ {
			out[r][c] = t.basis.At(c, r)
		}
	}
	return out
}

// SingularValues returns the top-k singular values of the fitted matrix.
func (t *TruncatedSVD) SingularValues() []float64 {
	return append([]float64(nil), t.singular...)
}

// NComponents returns the configured component count.
func (t *TruncatedSVD) NComponents() int {
	return t.components
}

// Fitted reports whether Fit has completed.
func (t *TruncatedSVD) Fitted() bool {
	return t.fitted
}

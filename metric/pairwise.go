package metric

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/ngram"
)

// Condensed is the upper triangle of a symmetric distance matrix stored
// row-major without the diagonal, in squareform order.
type Condensed []float64

// CondensedLen returns the length of a condensed matrix over n observations.
func CondensedLen(n int) int {
	return n * (n - 1) / 2
}

// At returns the distance between observations i and j of a condensed
// matrix over n observations. At(i, i) is 0.
func (c Condensed) At(i, j, n int) float64 {
	if i == j {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	return c[n*i-i*(i+1)/2+j-i-1]
}

// Square expands a condensed matrix over n observations into a full
// symmetric matrix with a zero diagonal.
func (c Condensed) Square(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := i + 1; j < n; j++ {
			out[i][j] = c.At(i, j, n)
		}
	}
	for i := range out {
		for j := 0; j < i; j++ {
			out[i][j] = out[j][i]
		}
	}
	return out
}

// PairwiseSets computes the condensed pairwise distance matrix over n-gram
// vectors. Rows are computed concurrently on the pool when one is provided.
func PairwiseSets(ctx context.Context, m core.Metric, vectors []ngram.Vector, pool *ants.Pool) (Condensed, error) {
	if err := core.ValidateMetric(m); err != nil {
		return nil, err
	}
	dist := func(i, j int) float64 {
		d, _ := SetDistance(m, vectors[i], vectors[j])
		return d
	}
	return pairwise(ctx, len(vectors), dist, pool)
}

// PairwiseDense computes the condensed pairwise cosine distance matrix over
// dense vectors.
func PairwiseDense(ctx context.Context, vectors [][]float64, pool *ants.Pool) (Condensed, error) {
	dist := func(i, j int) float64 {
		return DenseCosine(vectors[i], vectors[j])
	}
	return pairwise(ctx, len(vectors), dist, pool)
}

// CrossSets computes the rectangular distance matrix between two n-gram
// vector slices: out[i][j] is the distance from a[i] to b[j].
func CrossSets(ctx context.Context, m core.Metric, a, b []ngram.Vector, pool *ants.Pool) ([][]float64, error) {
	if err := core.ValidateMetric(m); err != nil {
		return nil, err
	}
	dist := func(i, j int) float64 {
		d, _ := SetDistance(m, a[i], b[j])
		return d
	}
	return cross(ctx, len(a), len(b), dist, pool)
}

// CrossDense computes the rectangular cosine distance matrix between two
// dense vector slices.
func CrossDense(ctx context.Context, a, b [][]float64, pool *ants.Pool) ([][]float64, error) {
	dist := func(i, j int) float64 {
		return DenseCosine(a[i], b[j])
	}
	return cross(ctx, len(a), len(b), dist, pool)
}

func pairwise(ctx context.Context, n int, dist func(i, j int) float64, pool *ants.Pool) (Condensed, error) {
	out := make(Condensed, CondensedLen(n))

	row := func(i int) {
		base := n*i - i*(i+1)/2 - i - 1
		for j := i + 1; j < n; j++ {
			out[base+j] = dist(i, j)
		}
	}

	if pool == nil {
		for i := 0; i < n-1; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row(i)
		}
		return out, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < n-1; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			row(i)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func cross(ctx context.Context, m, n int, dist func(i, j int) float64, pool *ants.Pool) ([][]float64, error) {
	out := make([][]float64, m)

	row := func(i int) {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = dist(i, j)
		}
	}

	if pool == nil {
		for i := 0; i < m; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row(i)
		}
		return out, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < m; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			row(i)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

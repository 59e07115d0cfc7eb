package metric

import (
	"fmt"
	"math"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/ngram"
)

// SetDistance computes the distance between two n-gram vectors under the
// given metric. Only n-gram presence matters; counts are ignored, matching
// the binarization the encoders apply before distance computation.
//
// Edge cases: two empty sets are at distance 0, an empty set and a
// non-empty set are at distance 1.
func SetDistance(m core.Metric, a, b ngram.Vector) (float64, error) {
	na, nb := len(a.Indices), len(b.Indices)
	if na == 0 && nb == 0 {
		return 0, nil
	}
	if na == 0 || nb == 0 {
		return 1, nil
	}

	inter := intersectionSize(a.Indices, b.Indices)
	switch m {
	case core.MetricDice:
		return 1 - 2*float64(inter)/float64(na+nb), nil
	case core.MetricJaccard:
		union := na + nb - inter
		return 1 - float64(inter)/float64(union), nil
	case core.MetricCosine:
		return 1 - float64(inter)/math.Sqrt(float64(na)*float64(nb)), nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrInvalidMetric, m)
}

// DenseCosine computes the cosine distance between two dense vectors.
// A zero vector is at distance 1 from everything except another zero
// vector, which is at distance 0.
func DenseCosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 && nb == 0 {
		return 0
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/math.Sqrt(na*nb)
}

// intersectionSize counts common elements of two sorted index slices.
func intersectionSize(a, b []uint32) int {
	var i, j, count int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			count++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return count
}

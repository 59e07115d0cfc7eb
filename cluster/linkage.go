package cluster

import (
	"errors"
	"fmt"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/metric"
)

var (
	// ErrTooFewObservations indicates fewer than two observations.
	ErrTooFewObservations = errors.New("need at least two observations")

	// ErrBadCondensedLength indicates the condensed matrix does not match
	// the observation count.
	ErrBadCondensedLength = errors.New("condensed matrix length mismatch")
)

// Linkage performs agglomerative hierarchical clustering over a condensed
// distance matrix, returning the n-1 merge steps in execution order.
//
// Cluster distances are maintained with Lance-Williams updates, so the
// supported linkages (average, complete, single) produce merge distances
// that never decrease from one step to the next. Ties are broken by scan
// order, which makes the result deterministic for a given input.
func Linkage(condensed metric.Condensed, n int, linkage core.Linkage) ([]core.Merge, error) {
	if err := core.ValidateLinkage(linkage); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewObservations, n)
	}
	if len(condensed) != metric.CondensedLen(n) {
		return nil, fmt.Errorf("%w: %d entries for %d observations",
			ErrBadCondensedLength, len(condensed), n)
	}

	// Active cluster state. ids and sizes are parallel to the rows of dist.
	ids := make([]int, n)
	sizes := make([]int, n)
	for i := range ids {
		ids[i] = i
		sizes[i] = 1
	}
	dist := condensed.Square(n)

	merges := make([]core.Merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		active := len(ids)

		// Find the closest pair.
		bi, bj := 0, 1
		best := dist[0][1]
		for i := 0; i < active; i++ {
			for j := i + 1; j < active; j++ {
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		left, right := ids[bi], ids[bj]
		if left > right {
			left, right = right, left
		}
		mergedSize := sizes[bi] + sizes[bj]
		merges = append(merges, core.Merge{
			Left:     left,
			Right:    right,
			Distance: best,
			Size:     mergedSize,
		})

		// Lance-Williams update of distances to the merged cluster,
		// stored in row/column bi.
		ni, nj := float64(sizes[bi]), float64(sizes[bj])
		for k := 0; k < active; k++ {
			if k == bi || k == bj {
				continue
			}
			dki, dkj := dist[k][bi], dist[k][bj]
			var d float64
			switch linkage {
			case core.LinkageSingle:
				d = min(dki, dkj)
			case core.LinkageComplete:
				d = max(dki, dkj)
			default: // average
				d = (ni*dki + nj*dkj) / (ni + nj)
			}
			dist[k][bi] = d
			dist[bi][k] = d
		}
		ids[bi] = n + step
		sizes[bi] = mergedSize

		// Drop row/column bj, preserving order for deterministic ties.
		ids = append(ids[:bj], ids[bj+1:]...)
		sizes = append(sizes[:bj], sizes[bj+1:]...)
		dist = append(dist[:bj], dist[bj+1:]...)
		for i := range dist {
			dist[i] = append(dist[i][:bj], dist[i][bj+1:]...)
		}
	}
	return merges, nil
}

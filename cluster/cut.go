package cluster

import (
	"fmt"

	"github.com/poiesic/dirtycat/core"
)

// Cut flattens a dendrogram into cluster labels for the n original
// observations.
//
// With CriterionMaxClust, t is the maximum number of flat clusters; the
// first n-t merges are applied (linkage distances are monotonic here, so
// this is the minimal-threshold cut). With CriterionDistance, every merge
// with distance <= t is applied.
//
// Labels are 1-based and assigned in order of first appearance by
// observation index.
func Cut(merges []core.Merge, n int, t float64, criterion core.Criterion) ([]int, error) {
	if err := core.ValidateCriterion(criterion); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewObservations, n)
	}
	if criterion == core.CriterionMaxClust && t < 1 {
		return nil, fmt.Errorf("%w: maxclust threshold %v", core.ErrInvalidThreshold, t)
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(x int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	// formed maps a dendrogram cluster id to the leaf-set root representing
	// it. Merges referencing an unformed cluster are skipped as well; this
	// only matters for the distance criterion.
	formed := make(map[int]int, n+len(merges))
	for i := 0; i < n; i++ {
		formed[i] = i
	}

	apply := 0
	if criterion == core.CriterionMaxClust {
		apply = n - int(t)
		if apply < 0 {
			apply = 0
		}
		if apply > len(merges) {
			apply = len(merges)
		}
	}

	for step, m := range merges {
		if criterion == core.CriterionMaxClust {
			if step >= apply {
				break
			}
		} else if m.Distance > t {
			continue
		}
		ra, okA := formed[m.Left]
		rb, okB := formed[m.Right]
		if !okA || !okB {
			continue
		}
		ra, rb = find(ra), find(rb)
		parent[rb] = ra
		formed[n+step] = ra
	}

	labels := make([]int, n)
	byRoot := make(map[int]int, n)
	next := 1
	for i := 0; i < n; i++ {
		root := find(i)
		label, ok := byRoot[root]
		if !ok {
			label = next
			next++
			byRoot[root] = label
		}
		labels[i] = label
	}
	return labels, nil
}

// Count returns the number of distinct labels produced by Cut.
func Count(labels []int) int {
	seen := make(map[int]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

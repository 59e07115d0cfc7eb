// Package metric provides string-set and dense vector distance functions
// and pairwise distance matrix computation.
//
// Pairwise matrices are produced in condensed (squareform) layout; rows are
// computed concurrently over a worker pool when one is supplied.
package metric

// Package cluster implements agglomerative hierarchical clustering over
// precomputed distance matrices.
//
// Linkage produces the dendrogram as a sequence of merge steps in the
// conventional linkage-matrix encoding; Cut flattens it into cluster labels
// under a maximum-cluster-count or distance-threshold criterion.
package cluster

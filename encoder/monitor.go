package encoder

import "github.com/poiesic/dirtycat/core"

// FitMonitor provides hooks to observe the fitting process.
// Implement this interface to track intermediate steps during a fit, for
// example to report progress on large category sets.
type FitMonitor interface {
	Start(categories int)
	AfterVectorize(categories int)
	AfterPairwise(pairs int)
	AfterLinkage(merges []core.Merge)
	AfterCut(labels []int)
	Finish()
}

// noopMonitor is a no-op implementation of FitMonitor
type noopMonitor struct{}

var _ FitMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ int)                 {}
func (n *noopMonitor) AfterVectorize(_ int)        {}
func (n *noopMonitor) AfterPairwise(_ int)         {}
func (n *noopMonitor) AfterLinkage(_ []core.Merge) {}
func (n *noopMonitor) AfterCut(_ []int)            {}
func (n *noopMonitor) Finish()                     {}

package encoder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dirtycat/cluster"
	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/ngram"
)

// AgglomerativeEncoder groups dirty categories by hierarchical clustering
// over pairwise string distances. Fitting builds the dendrogram over the
// unique categories and cuts it into flat clusters; transforming maps each
// input value to its cluster label.
//
// A fitted encoder is safe for concurrent Transform calls.
type AgglomerativeEncoder struct {
	threshold float64
	cfg       settings
	pool      *ants.Pool
	logger    *slog.Logger

	fitted     bool
	source     core.VectorSource
	categories []string
	byCategory map[string]int
	vectorizer *ngram.Vectorizer
	fitPoints  *points
	merges     []core.Merge
	clusters   []int
}

// NewAgglomerative creates an unfitted agglomerative encoder. The threshold
// t is interpreted by the cut criterion: the maximum number of flat
// clusters under maxclust (the default), or a merge distance bound under
// the distance criterion.
func NewAgglomerative(t float64, opts ...Option) (*AgglomerativeEncoder, error) {
	cfg, err := apply(opts)
	if err != nil {
		return nil, err
	}
	if cfg.criterion == core.CriterionMaxClust && t < 1 {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidThreshold, t)
	}

	pool, err := newPool(cfg.poolSize)
	if err != nil {
		return nil, err
	}

	return &AgglomerativeEncoder{
		threshold: t,
		cfg:       cfg,
		pool:      pool,
		logger:    cfg.logger.With("component", "agglomerative-encoder"),
	}, nil
}

// RestoreAgglomerative rebuilds a fitted encoder from a stored model.
// A semantic model additionally needs WithEmbedder to transform categories
// it has not seen (the force-linkage path embeds them).
func RestoreAgglomerative(m *core.EncoderModel, opts ...Option) (*AgglomerativeEncoder, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}
	if m.Kind != core.KindAgglomerative {
		return nil, fmt.Errorf("%w: %q", ErrKindMismatch, m.Kind)
	}

	restoreOpts := append([]Option{
		WithMetric(m.Metric),
		WithLinkage(m.Linkage),
		WithCriterion(m.Criterion),
		WithUnknownPolicy(m.UnknownPolicy),
		WithLowercase(m.Lowercase),
	}, opts...)
	if m.Source == core.SourceNGram {
		restoreOpts = append([]Option{WithNGramRange(m.NGramMin, m.NGramMax)}, restoreOpts...)
	}

	enc, err := NewAgglomerative(m.Threshold, restoreOpts...)
	if err != nil {
		return nil, err
	}
	if m.Source == core.SourceSemantic && enc.cfg.embedder == nil && m.UnknownPolicy == core.UnknownForceLinkage {
		enc.logger.Warn("semantic model restored without embedder; unseen categories cannot be force-linked")
	}

	var sets []ngram.Vector
	if m.Source == core.SourceNGram {
		vectorizer, err := ngram.Restore(m.Vocabulary,
			ngram.WithNGramRange(m.NGramMin, m.NGramMax),
			ngram.WithLowercase(m.Lowercase))
		if err != nil {
			enc.Release()
			return nil, err
		}
		enc.vectorizer = vectorizer
		sets, err = vectorizer.Transform(m.Categories)
		if err != nil {
			enc.Release()
			return nil, err
		}
	}

	enc.source = m.Source
	enc.categories = m.Categories
	enc.clusters = m.Clusters
	enc.merges = m.Merges
	enc.fitPoints = restoredPoints(&enc.cfg, m, sets)
	enc.byCategory = make(map[string]int, len(m.Categories))
	for i, c := range m.Categories {
		enc.byCategory[c] = m.Clusters[i]
	}
	enc.fitted = true
	return enc, nil
}

// Fit clusters the unique categories in values.
func (e *AgglomerativeEncoder) Fit(ctx context.Context, values []string) error {
	if len(values) == 0 {
		return ErrNoValues
	}

	categories, _ := uniqueSorted(values)
	n := len(categories)
	e.cfg.monitor.Start(n)
	e.logger.Debug("fitting agglomerative encoder", "values", len(values), "categories", n)

	vectorizer, pts, err := fitVectors(ctx, &e.cfg, categories)
	if err != nil {
		return err
	}
	e.cfg.monitor.AfterVectorize(n)

	var merges []core.Merge
	labels := []int{1}
	if n > 1 {
		condensed, err := pts.pairwise(ctx, e.pool)
		if err != nil {
			return err
		}
		e.cfg.monitor.AfterPairwise(len(condensed))

		merges, err = cluster.Linkage(condensed, n, e.cfg.linkage)
		if err != nil {
			return err
		}
		e.cfg.monitor.AfterLinkage(merges)

		labels, err = cluster.Cut(merges, n, e.threshold, e.cfg.criterion)
		if err != nil {
			return err
		}
	}
	e.cfg.monitor.AfterCut(labels)

	e.source = e.cfg.source()
	e.categories = categories
	e.vectorizer = vectorizer
	e.fitPoints = pts
	e.merges = merges
	e.clusters = labels
	e.byCategory = make(map[string]int, n)
	for i, c := range categories {
		e.byCategory[c] = labels[i]
	}
	e.fitted = true

	e.cfg.monitor.Finish()
	e.logger.Debug("fit complete", "clusters", cluster.Count(labels))
	return nil
}

// Transform maps each value to an Assignment carrying its cluster label.
// Values unseen during fitting are handled per the unknown policy.
func (e *AgglomerativeEncoder) Transform(ctx context.Context, values []string) ([]core.Assignment, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}

	// Resolve each distinct unseen value once.
	resolved := make(map[string]core.Assignment, len(values))
	var unknown []string
	seenUnknown := make(map[string]struct{})
	for _, v := range values {
		if _, ok := resolved[v]; ok {
			continue
		}
		if label, ok := e.byCategory[v]; ok {
			resolved[v] = core.Assignment{Category: v, Cluster: label, Known: true}
			continue
		}
		if _, ok := seenUnknown[v]; !ok {
			seenUnknown[v] = struct{}{}
			unknown = append(unknown, v)
		}
	}

	if len(unknown) > 0 {
		switch e.cfg.unknownPolicy {
		case core.UnknownImputeMissing:
			for _, v := range unknown {
				resolved[v] = core.Assignment{Category: v}
			}
		default:
			assignments, err := e.forceLinkage(ctx, unknown)
			if err != nil {
				return nil, err
			}
			for i, v := range unknown {
				resolved[v] = assignments[i]
			}
		}
	}

	out := make([]core.Assignment, len(values))
	for i, v := range values {
		out[i] = resolved[v]
	}
	return out, nil
}

// FitTransform fits on values and transforms them.
func (e *AgglomerativeEncoder) FitTransform(ctx context.Context, values []string) ([]core.Assignment, error) {
	if err := e.Fit(ctx, values); err != nil {
		return nil, err
	}
	return e.Transform(ctx, values)
}

// forceLinkage assigns each unseen category to the fitted cluster that
// minimizes the linkage aggregation of distances to the cluster's members.
func (e *AgglomerativeEncoder) forceLinkage(ctx context.Context, unknown []string) ([]core.Assignment, error) {
	if e.source == core.SourceSemantic && e.cfg.embedder == nil {
		return nil, fmt.Errorf("%w: cannot force-link %d unseen categories", ErrEmbedderRequired, len(unknown))
	}

	pts, err := makePoints(ctx, &e.cfg, e.vectorizer, unknown)
	if err != nil {
		return nil, err
	}
	dists, err := pts.cross(ctx, e.fitPoints, e.pool)
	if err != nil {
		return nil, err
	}

	out := make([]core.Assignment, len(unknown))
	for i, v := range unknown {
		sums := make(map[int]float64)
		counts := make(map[int]int)
		for j, label := range e.clusters {
			d := dists[i][j]
			switch e.cfg.linkage {
			case core.LinkageComplete:
				if cur, ok := sums[label]; !ok || d > cur {
					sums[label] = d
				}
			case core.LinkageSingle:
				if cur, ok := sums[label]; !ok || d < cur {
					sums[label] = d
				}
			default: // average
				sums[label] += d
				counts[label]++
			}
		}

		best, bestDist := 0, 0.0
		for _, label := range e.clusters {
			d := sums[label]
			if e.cfg.linkage == core.LinkageAverage {
				d /= float64(counts[label])
			}
			if best == 0 || d < bestDist || (d == bestDist && label < best) {
				best, bestDist = label, d
			}
		}
		out[i] = core.Assignment{Category: v, Cluster: best, Known: false}
	}
	return out, nil
}

// Categories returns the unique categories seen during fitting, sorted.
func (e *AgglomerativeEncoder) Categories() []string {
	return append([]string(nil), e.categories...)
}

// Clusters returns the cluster label of each fitted category, parallel to
// Categories.
func (e *AgglomerativeEncoder) Clusters() []int {
	return append([]int(nil), e.clusters...)
}

// Merges returns the dendrogram produced during fitting. It can drive a
// dendrogram rendering or a re-cut at a different threshold.
func (e *AgglomerativeEncoder) Merges() []core.Merge {
	return append([]core.Merge(nil), e.merges...)
}

// Fitted reports whether Fit has completed.
func (e *AgglomerativeEncoder) Fitted() bool {
	return e.fitted
}

// Snapshot captures the fitted state as a persistable model.
func (e *AgglomerativeEncoder) Snapshot(name string) (*core.EncoderModel, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	m := &core.EncoderModel{
		Name:          name,
		Kind:          core.KindAgglomerative,
		Source:        e.source,
		NGramMin:      e.cfg.ngramRange.Min,
		NGramMax:      e.cfg.ngramRange.Max,
		Lowercase:     e.cfg.lowercase,
		Metric:        e.cfg.metric,
		Linkage:       e.cfg.linkage,
		Criterion:     e.cfg.criterion,
		Threshold:     e.threshold,
		UnknownPolicy: e.cfg.unknownPolicy,
		Clusters:      append([]int(nil), e.clusters...),
		Merges:        append([]core.Merge(nil), e.merges...),
		Categories:    append([]string(nil), e.categories...),
	}
	if e.source == core.SourceNGram {
		m.Vocabulary = e.vectorizer.Vocabulary()
	} else {
		m.Dense = e.fitPoints.dense
	}
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Release releases the worker pool. The encoder must not be used afterwards.
func (e *AgglomerativeEncoder) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// fitVectors fits the n-gram vocabulary (when applicable) and produces the
// category points for fitting.
func fitVectors(ctx context.Context, s *settings, categories []string) (*ngram.Vectorizer, *points, error) {
	if s.embedder != nil {
		pts, err := makePoints(ctx, s, nil, categories)
		return nil, pts, err
	}

	vectorizer, err := ngram.New(
		ngram.WithNGramRange(s.ngramRange.Min, s.ngramRange.Max),
		ngram.WithLowercase(s.lowercase))
	if err != nil {
		return nil, nil, err
	}
	if err := vectorizer.Fit(categories); err != nil {
		return nil, nil, err
	}
	pts, err := makePoints(ctx, s, vectorizer, categories)
	if err != nil {
		return nil, nil, err
	}
	return vectorizer, pts, nil
}

// newPool builds the shared worker pool; size 0 means half the CPUs.
func newPool(size int) (*ants.Pool, error) {
	if size < 1 {
		size = runtime.NumCPU() / 2
		if size < 1 {
			size = 1
		}
	}
	return ants.NewPool(size)
}

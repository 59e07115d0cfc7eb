package encoder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/ngram"
	"github.com/poiesic/dirtycat/reduce"
	"gonum.org/v1/gonum/mat"
)

// DistanceEncoder embeds dirty categories into a low-dimensional numeric
// space. Fitting computes the pairwise distance matrix over the unique
// categories and factorizes it with a truncated SVD; transforming measures
// each input value against the fitted categories and projects the distance
// profile onto the retained components.
//
// A fitted encoder is safe for concurrent Transform calls.
type DistanceEncoder struct {
	cfg    settings
	pool   *ants.Pool
	logger *slog.Logger

	fitted     bool
	source     core.VectorSource
	categories []string
	byCategory map[string]int
	vectorizer *ngram.Vectorizer
	fitPoints  *points
	svd        *reduce.TruncatedSVD
}

// NewDistance creates an unfitted distance encoder. The projection
// dimension defaults to 2 and is set with WithComponents.
func NewDistance(opts ...Option) (*DistanceEncoder, error) {
	cfg, err := apply(opts)
	if err != nil {
		return nil, err
	}

	pool, err := newPool(cfg.poolSize)
	if err != nil {
		return nil, err
	}

	return &DistanceEncoder{
		cfg:    cfg,
		pool:   pool,
		logger: cfg.logger.With("component", "distance-encoder"),
	}, nil
}

// RestoreDistance rebuilds a fitted encoder from a stored model.
// A semantic model additionally needs WithEmbedder so that new categories
// can be embedded at transform time.
func RestoreDistance(m *core.EncoderModel, opts ...Option) (*DistanceEncoder, error) {
	if err := core.ValidateModel(m); err != nil {
		return nil, err
	}
	if m.Kind != core.KindDistance {
		return nil, fmt.Errorf("%w: %q", ErrKindMismatch, m.Kind)
	}

	restoreOpts := append([]Option{
		WithMetric(m.Metric),
		WithLowercase(m.Lowercase),
		WithComponents(m.Components),
	}, opts...)
	if m.Source == core.SourceNGram {
		restoreOpts = append([]Option{WithNGramRange(m.NGramMin, m.NGramMax)}, restoreOpts...)
	}

	enc, err := NewDistance(restoreOpts...)
	if err != nil {
		return nil, err
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

	svd, err := reduce.Restore(m.Basis, m.Singular)
	if err != nil {
		enc.Release()
		return nil, err
	}

	enc.source = m.Source
	enc.categories = m.Categories
	enc.fitPoints = restoredPoints(&enc.cfg, m, sets)
	enc.svd = svd
	enc.byCategory = make(map[string]int, len(m.Categories))
	for i, c := range m.Categories {
		enc.byCategory[c] = i
	}
	enc.fitted = true
	return enc, nil
}

// Fit learns the distance projection from the unique categories in values.
// The component count must be smaller than the number of unique categories.
func (e *DistanceEncoder) Fit(ctx context.Context, values []string) error {
	if len(values) == 0 {
		return ErrNoValues
	}

	categories, index := uniqueSorted(values)
	n := len(categories)
	e.cfg.monitor.Start(n)
	e.logger.Debug("fitting distance encoder", "values", len(values), "categories", n, "components", e.cfg.components)

	vectorizer, pts, err := fitVectors(ctx, &e.cfg, categories)
	if err != nil {
		return err
	}
	e.cfg.monitor.AfterVectorize(n)

	condensed, err := pts.pairwise(ctx, e.pool)
	if err != nil {
		return err
	}
	e.cfg.monitor.AfterPairwise(len(condensed))

	square := condensed.Square(n)
	svd, err := reduce.New(e.cfg.components)
	if err != nil {
		return err
	}
	if err := svd.Fit(denseMatrix(square)); err != nil {
		return err
	}

	e.source = e.cfg.source()
	e.categories = categories
	e.byCategory = index
	e.vectorizer = vectorizer
	e.fitPoints = pts
	e.svd = svd
	e.fitted = true

	e.cfg.monitor.Finish()
	return nil
}

// Transform encodes each value as its projected distance profile, returning
// one row of length NComponents per input value.
func (e *DistanceEncoder) Transform(ctx context.Context, values []string) ([][]float64, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if len(values) == 0 {
		return [][]float64{}, nil
	}

	uniques, index := uniqueSorted(values)

	var pts *points
	var err error
	if e.source == core.SourceSemantic && e.cfg.embedder == nil {
		// Without an embedder only fitted categories can be measured; their
		// stored vectors are reused.
		if hasUnseen(uniques, e.byCategory) {
			return nil, ErrEmbedderRequired
		}
		dense := make([][]float64, len(uniques))
		for i, v := range uniques {
			dense[i] = e.fitPoints.dense[e.byCategory[v]]
		}
		pts = &points{source: core.SourceSemantic, metric: e.cfg.metric, dense: dense}
	} else {
		pts, err = makePoints(ctx, &e.cfg, e.vectorizer, uniques)
		if err != nil {
			return nil, err
		}
	}
	dists, err := pts.cross(ctx, e.fitPoints, e.pool)
	if err != nil {
		return nil, err
	}

	projected, err := e.svd.Transform(denseMatrix(dists))
	if err != nil {
		return nil, err
	}

	_, k := projected.Dims()
	out := make([][]float64, len(values))
	for i, v := range values {
		row := make([]float64, k)
		mat.Row(row, index[v], projected)
		out[i] = row
	}
	return out, nil
}

// FitTransform fits on values and transforms them.
func (e *DistanceEncoder) FitTransform(ctx context.Context, values []string) ([][]float64, error) {
	if err := e.Fit(ctx, values); err != nil {
		return nil, err
	}
	return e.Transform(ctx, values)
}

// Categories returns the unique categories seen during fitting, sorted.
func (e *DistanceEncoder) Categories() []string {
	return append([]string(nil), e.categories...)
}

// NComponents returns the projection dimension.
func (e *DistanceEncoder) NComponents() int {
	return e.cfg.components
}

// SingularValues returns the retained singular values of the fitted
// distance matrix.
func (e *DistanceEncoder) SingularValues() []float64 {
	if !e.fitted {
		return nil
	}
	return e.svd.SingularValues()
}

// Fitted reports whether Fit has completed.
func (e *DistanceEncoder) Fitted() bool {
	return e.fitted
}

// Snapshot captures the fitted state as a persistable model.
func (e *DistanceEncoder) Snapshot(name string) (*core.EncoderModel, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	m := &core.EncoderModel{
		Name:       name,
		Kind:       core.KindDistance,
		Source:     e.source,
		NGramMin:   e.cfg.ngramRange.Min,
		NGramMax:   e.cfg.ngramRange.Max,
		Lowercase:  e.cfg.lowercase,
		Metric:     e.cfg.metric,
		Components: e.cfg.components,
		Basis:      e.svd.Components(),
		Singular:   e.svd.SingularValues(),
		Categories: append([]string(nil), e.categories...),
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
func (e *DistanceEncoder) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

func hasUnseen(uniques []string, fitted map[string]int) bool {
	for _, v := range uniques {
		if _, ok := fitted[v]; !ok {
			return true
		}
	}
	return false
}

// denseMatrix copies a row-major [][]float64 into a gonum dense matrix.
func denseMatrix(rows [][]float64) *mat.Dense {
	r := len(rows)
	c := len(rows[0])
	out := mat.NewDense(r, c, nil)
	for i, row := range rows {
		out.SetRow(i, row)
	}
	return out
}

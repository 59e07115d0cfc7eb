package encoder

import (
	"context"
	"sort"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/embed"
	"github.com/poiesic/dirtycat/metric"
	"github.com/poiesic/dirtycat/ngram"
)

// points holds the vector representation of a batch of categories under
// either vector source, and knows how to measure distances on it.
type points struct {
	source core.VectorSource
	metric core.Metric
	sets   []ngram.Vector
	dense  [][]float64
}

func (p *points) len() int {
	if p.source == core.SourceSemantic {
		return len(p.dense)
	}
	return len(p.sets)
}

func (p *points) pairwise(ctx context.Context, pool *ants.Pool) (metric.Condensed, error) {
	if p.source == core.SourceSemantic {
		return metric.PairwiseDense(ctx, p.dense, pool)
	}
	return metric.PairwiseSets(ctx, p.metric, p.sets, pool)
}

func (p *points) cross(ctx context.Context, q *points, pool *ants.Pool) ([][]float64, error) {
	if p.source == core.SourceSemantic {
		return metric.CrossDense(ctx, p.dense, q.dense, pool)
	}
	return metric.CrossSets(ctx, p.metric, p.sets, q.sets, pool)
}

// makePoints vectorizes values with the configured source. For the n-gram
// source the vectorizer must already be fitted.
func makePoints(ctx context.Context, s *settings, vectorizer *ngram.Vectorizer, values []string) (*points, error) {
	if s.embedder != nil {
		vectors, err := s.embedder.EmbedTexts(ctx, values)
		if err != nil {
			return nil, err
		}
		return &points{
			source: core.SourceSemantic,
			metric: s.metric,
			dense:  embed.Dense(vectors),
		}, nil
	}

	sets, err := vectorizer.Transform(values)
	if err != nil {
		return nil, err
	}
	return &points{
		source: core.SourceNGram,
		metric: s.metric,
		sets:   sets,
	}, nil
}

// restoredPoints rebuilds fitted category points from a model snapshot.
func restoredPoints(s *settings, m *core.EncoderModel, sets []ngram.Vector) *points {
	if m.Source == core.SourceSemantic {
		return &points{source: core.SourceSemantic, metric: m.Metric, dense: m.Dense}
	}
	return &points{source: core.SourceNGram, metric: m.Metric, sets: sets}
}

// uniqueSorted returns the sorted distinct values and a map from value to
// its index in the result.
func uniqueSorted(values []string) ([]string, map[string]int) {
	index := make(map[string]int, len(values))
	for _, v := range values {
		index[v] = 0
	}
	out := make([]string, 0, len(index))
	for v := range index {
		out = append(out, v)
	}
	sort.Strings(out)
	for i, v := range out {
		index[v] = i
	}
	return out, index
}

package encoder

import (
	"context"
	"testing"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/embed/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitDistance(t *testing.T, opts ...Option) *DistanceEncoder {
	t.Helper()
	enc, err := NewDistance(opts...)
	require.NoError(t, err)
	t.Cleanup(enc.Release)
	require.NoError(t, enc.Fit(context.Background(), cityValues))
	return enc
}

func TestNewDistance(t *testing.T) {
	t.Run("defaults to two components", func(t *testing.T) {
		enc, err := NewDistance()
		require.NoError(t, err)
		defer enc.Release()
		assert.Equal(t, 2, enc.NComponents())
		assert.False(t, enc.Fitted())
	})

	t.Run("invalid components", func(t *testing.T) {
		_, err := NewDistance(WithComponents(0))
		assert.ErrorIs(t, err, core.ErrInvalidComponents)
	})
}

func TestDistanceFit(t *testing.T) {
	ctx := context.Background()

	t.Run("fits and keeps singular values", func(t *testing.T) {
		enc := fitDistance(t)
		assert.True(t, enc.Fitted())
		assert.Equal(t, []string{"londom", "london", "paris", "pariss", "tokyo"}, enc.Categories())

		values := enc.SingularValues()
		require.Len(t, values, 2)
		for i := 1; i < len(values); i++ {
			assert.GreaterOrEqual(t, values[i-1], values[i])
		}
	})

	t.Run("too many components for the categories", func(t *testing.T) {
		enc, err := NewDistance(WithComponents(3))
		require.NoError(t, err)
		defer enc.Release()

		err = enc.Fit(ctx, []string{"a", "b", "c"})
		assert.ErrorIs(t, err, core.ErrInvalidComponents)
	})

	t.Run("no values", func(t *testing.T) {
		enc, err := NewDistance()
		require.NoError(t, err)
		defer enc.Release()
		assert.ErrorIs(t, enc.Fit(ctx, nil), ErrNoValues)
	})
}

func TestDistanceTransform(t *testing.T) {
	ctx := context.Background()

	t.Run("not fitted", func(t *testing.T) {
		enc, err := NewDistance()
		require.NoError(t, err)
		defer enc.Release()
		_, err = enc.Transform(ctx, []string{"x"})
		assert.ErrorIs(t, err, ErrNotFitted)
	})

	t.Run("row per input value", func(t *testing.T) {
		enc := fitDistance(t)

		rows, err := enc.Transform(ctx, []string{"london", "tokyo", "london"})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for _, row := range rows {
			assert.Len(t, row, 2)
		}
		assert.Equal(t, rows[0], rows[2], "duplicate inputs share a projection")
		assert.NotEqual(t, rows[0], rows[1])
	})

	t.Run("typo variants land close together", func(t *testing.T) {
		enc := fitDistance(t)

		rows, err := enc.Transform(ctx, []string{"london", "londom", "tokyo"})
		require.NoError(t, err)

		closeDist := sqDist(rows[0], rows[1])
		farDist := sqDist(rows[0], rows[2])
		assert.Less(t, closeDist, farDist)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		enc := fitDistance(t)

		rows, err := enc.Transform(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("values shorter than the n-gram range share a projection", func(t *testing.T) {
		enc, err := NewDistance(WithNGramRange(2, 3))
		require.NoError(t, err)
		defer enc.Release()
		require.NoError(t, enc.Fit(ctx, []string{"london", "londom", "paris", "pariss", "x"}))

		// "x", "y" and "" all vectorize to the empty set, so their distance
		// profiles against the fitted categories are identical.
		rows, err := enc.Transform(ctx, []string{"x", "y", ""})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for j := range rows[0] {
			assert.InDelta(t, rows[0][j], rows[1][j], 1e-9)
			assert.InDelta(t, rows[0][j], rows[2][j], 1e-9)
		}
	})

	t.Run("unseen values are projected", func(t *testing.T) {
		enc := fitDistance(t)

		rows, err := enc.Transform(ctx, []string{"londen"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], 2)
	})

	t.Run("fit transform matches transform on the same values", func(t *testing.T) {
		enc, err := NewDistance()
		require.NoError(t, err)
		defer enc.Release()

		want, err := enc.FitTransform(ctx, cityValues)
		require.NoError(t, err)
		got, err := enc.Transform(ctx, cityValues)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestDistanceSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	enc := fitDistance(t)

	model, err := enc.Snapshot("cities-proj")
	require.NoError(t, err)
	assert.Equal(t, core.KindDistance, model.Kind)
	assert.Equal(t, core.SourceNGram, model.Source)
	assert.Equal(t, 2, model.Components)
	require.Len(t, model.Basis, 2)
	assert.Len(t, model.Basis[0], len(model.Categories))
	require.NoError(t, core.ValidateModel(model))

	restored, err := RestoreDistance(model)
	require.NoError(t, err)
	defer restored.Release()
	assert.True(t, restored.Fitted())
	assert.Equal(t, enc.NComponents(), restored.NComponents())

	probe := []string{"london", "londen", "tokyo"}
	want, err := enc.Transform(ctx, probe)
	require.NoError(t, err)
	got, err := restored.Transform(ctx, probe)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		for j := range want[i] {
			assert.InDelta(t, want[i][j], got[i][j], 1e-9)
		}
	}

	t.Run("kind mismatch", func(t *testing.T) {
		wrong := *model
		wrong.Kind = core.KindAgglomerative
		wrong.Linkage = core.LinkageAverage
		wrong.Criterion = core.CriterionMaxClust
		wrong.UnknownPolicy = core.UnknownForceLinkage
		wrong.Clusters = make([]int, len(model.Categories))
		_, err := RestoreDistance(&wrong)
		assert.ErrorIs(t, err, ErrKindMismatch)
	})
}

func TestDistanceSemantic(t *testing.T) {
	ctx := context.Background()

	embedder := mock.NewEmbedder()
	enc, err := NewDistance(WithEmbedder(embedder), WithComponents(1))
	require.NoError(t, err)
	defer enc.Release()
	require.NoError(t, enc.Fit(ctx, []string{"dog", "cat", "fish"}))

	model, err := enc.Snapshot("pets-proj")
	require.NoError(t, err)
	assert.Equal(t, core.SourceSemantic, model.Source)
	assert.Equal(t, core.MetricCosine, model.Metric)
	assert.Len(t, model.Dense, 3)

	t.Run("restore without embedder handles seen values", func(t *testing.T) {
		restored, err := RestoreDistance(model)
		require.NoError(t, err)
		defer restored.Release()

		rows, err := restored.Transform(ctx, []string{"dog", "cat"})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Len(t, rows[0], 1)
	})

	t.Run("restore without embedder rejects unseen values", func(t *testing.T) {
		restored, err := RestoreDistance(model)
		require.NoError(t, err)
		defer restored.Release()

		_, err = restored.Transform(ctx, []string{"parrot"})
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("restore with embedder projects unseen values", func(t *testing.T) {
		restored, err := RestoreDistance(model, WithEmbedder(embedder))
		require.NoError(t, err)
		defer restored.Release()

		rows, err := restored.Transform(ctx, []string{"parrot"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], 1)
	})
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

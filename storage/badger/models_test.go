package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/storage"
)

func testModel(name string) *core.EncoderModel {
	return &core.EncoderModel{
		Name:          name,
		Kind:          core.KindAgglomerative,
		Source:        core.SourceNGram,
		NGramMin:      1,
		NGramMax:      3,
		Lowercase:     true,
		Metric:        core.MetricDice,
		Linkage:       core.LinkageAverage,
		Criterion:     core.CriterionMaxClust,
		Threshold:     2,
		UnknownPolicy: core.UnknownForceLinkage,
		Clusters:      []int{1, 1, 2},
		Merges: []core.Merge{
			{Left: 0, Right: 1, Distance: 0.2, Size: 2},
			{Left: 2, Right: 3, Distance: 0.6, Size: 3},
		},
		Vocabulary: []string{"lo", "nd"},
		Categories: []string{"londom", "london", "paris"},
	}
}

func TestModelRepositoryBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Save a model
	model := testModel("cities")
	if err := repo.SaveModel(ctx, model); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}
	if model.CreatedAt.IsZero() || model.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set on save")
	}

	// Retrieve it
	retrieved, err := repo.GetModel(ctx, "cities")
	if err != nil {
		t.Fatalf("Failed to get model: %v", err)
	}
	if retrieved.Name != "cities" {
		t.Fatalf("Expected name 'cities', got '%s'", retrieved.Name)
	}
	if len(retrieved.Categories) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(retrieved.Categories))
	}
	if len(retrieved.Merges) != 2 {
		t.Fatalf("Expected 2 merges, got %d", len(retrieved.Merges))
	}
}

func TestModelRepositoryTimestampPrecision(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	// Timestamps are stored at microsecond precision; the values stamped on
	// save must round-trip exactly.
	model := testModel("cities")
	if err := repo.SaveModel(ctx, model); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}

	retrieved, err := repo.GetModel(ctx, "cities")
	if err != nil {
		t.Fatalf("Failed to get model: %v", err)
	}
	if !retrieved.CreatedAt.Equal(model.CreatedAt) {
		t.Fatalf("Expected CreatedAt to round-trip exactly: %v != %v", retrieved.CreatedAt, model.CreatedAt)
	}
	if !retrieved.UpdatedAt.Equal(model.UpdatedAt) {
		t.Fatalf("Expected UpdatedAt to round-trip exactly: %v != %v", retrieved.UpdatedAt, model.UpdatedAt)
	}
}

func TestModelRepositoryGetMissing(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	_, err = repo.GetModel(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestModelRepositoryOverwrite(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	first := testModel("cities")
	if err := repo.SaveModel(ctx, first); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}
	created := first.CreatedAt

	second := testModel("cities")
	second.Clusters = []int{1, 2, 3}
	if err := repo.SaveModel(ctx, second); err != nil {
		t.Fatalf("Failed to overwrite model: %v", err)
	}

	retrieved, err := repo.GetModel(ctx, "cities")
	if err != nil {
		t.Fatalf("Failed to get model: %v", err)
	}
	if retrieved.Clusters[2] != 3 {
		t.Fatal("Expected the overwritten clusters")
	}
	if !retrieved.CreatedAt.Equal(created) {
		t.Fatalf("Expected CreatedAt to survive overwrites: %v != %v", retrieved.CreatedAt, created)
	}
	if retrieved.UpdatedAt.Before(created) {
		t.Fatal("Expected UpdatedAt to move forward")
	}
}

func TestModelRepositoryValidation(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	bad := testModel("")
	err = repo.SaveModel(context.Background(), bad)
	if !errors.Is(err, core.ErrInvalidModel) {
		t.Fatalf("Expected ErrInvalidModel, got %v", err)
	}
}

func TestModelRepositoryList(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	for _, name := range []string{"zebra", "alpha", "middle"} {
		if err := repo.SaveModel(ctx, testModel(name)); err != nil {
			t.Fatalf("Failed to save model %q: %v", name, err)
		}
	}

	infos, err := repo.ListModels(ctx)
	if err != nil {
		t.Fatalf("Failed to list models: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 models, got %d", len(infos))
	}

	// BadgerDB iterates keys lexicographically
	wantOrder := []string{"alpha", "middle", "zebra"}
	for i, info := range infos {
		if info.Name != wantOrder[i] {
			t.Fatalf("Expected %q at position %d, got %q", wantOrder[i], i, info.Name)
		}
		if info.Kind != core.KindAgglomerative {
			t.Fatalf("Expected agglomerative kind, got %q", info.Kind)
		}
		if info.Categories != 3 {
			t.Fatalf("Expected 3 categories, got %d", info.Categories)
		}
	}
}

func TestModelRepositoryDelete(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	if err := repo.SaveModel(ctx, testModel("cities")); err != nil {
		t.Fatalf("Failed to save model: %v", err)
	}
	if err := repo.DeleteModel(ctx, "cities"); err != nil {
		t.Fatalf("Failed to delete model: %v", err)
	}

	if _, err := repo.GetModel(ctx, "cities"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	infos, err := repo.ListModels(ctx)
	if err != nil {
		t.Fatalf("Failed to list models: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("Expected no listing entries after delete, got %d", len(infos))
	}

	if err := repo.DeleteModel(ctx, "cities"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound deleting a missing model, got %v", err)
	}
}

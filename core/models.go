package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for fitted models.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Metric selects the distance function applied to category vectors.
type Metric string

const (
	// MetricDice is the Dice set distance: 1 - 2|A∩B| / (|A|+|B|).
	MetricDice Metric = "dice"
	// MetricJaccard is the Jaccard set distance: 1 - |A∩B| / |A∪B|.
	MetricJaccard Metric = "jaccard"
	// MetricCosine is the cosine distance. Over n-gram sets it is the
	// boolean form 1 - |A∩B| / sqrt(|A||B|); over dense vectors the usual
	// 1 - <a,b>/(|a||b|).
	MetricCosine Metric = "cosine"
)

// Linkage selects how the distance between two clusters is derived from
// the distances between their members.
type Linkage string

const (
	// LinkageAverage uses the unweighted mean of member distances (UPGMA).
	LinkageAverage Linkage = "average"
	// LinkageComplete uses the maximum member distance.
	LinkageComplete Linkage = "complete"
	// LinkageSingle uses the minimum member distance.
	LinkageSingle Linkage = "single"
)

// Criterion selects how the dendrogram is cut into flat clusters.
type Criterion string

const (
	// CriterionMaxClust cuts the dendrogram into at most t flat clusters.
	CriterionMaxClust Criterion = "maxclust"
	// CriterionDistance applies only merges whose distance is <= t.
	CriterionDistance Criterion = "distance"
)

// UnknownPolicy controls how categories unseen during fitting are handled
// at transform time.
type UnknownPolicy string

const (
	// UnknownForceLinkage assigns the unseen category to the fitted cluster
	// that minimizes the linkage aggregation of distances to its members.
	UnknownForceLinkage UnknownPolicy = "force-linkage"
	// UnknownImputeMissing leaves the unseen category unassigned; the
	// resulting Assignment has Known=false.
	UnknownImputeMissing UnknownPolicy = "impute-missing"
)

// ModelKind identifies which encoder produced a fitted model.
type ModelKind string

const (
	// KindAgglomerative is a hierarchical clustering encoder model.
	KindAgglomerative ModelKind = "agglomerative"
	// KindDistance is a distance-projection encoder model.
	KindDistance ModelKind = "distance"
)

// VectorSource identifies how category vectors were produced.
type VectorSource string

const (
	// SourceNGram derives vectors from character n-gram counts.
	SourceNGram VectorSource = "ngram"
	// SourceSemantic derives vectors from text embeddings.
	SourceSemantic VectorSource = "semantic"
)

// NGramRange bounds the lengths of character n-grams extracted from a
// category string. All lengths n with Min <= n <= Max are used.
type NGramRange struct {
	Min int
	Max int
}

// DefaultNGramRange matches the encoder defaults (unigrams through trigrams).
func DefaultNGramRange() NGramRange {
	return NGramRange{Min: 1, Max: 3}
}

// Merge is a single agglomeration step. Left and Right identify the merged
// clusters: values below the number of observations are original
// observations, and the cluster created by step i has id n+i. Left < Right.
type Merge struct {
	Left     int
	Right    int
	Distance float64
	Size     int // observation count of the new cluster
}

// Assignment is the transform output of the agglomerative encoder for a
// single input value. Cluster labels are 1-based. Known is false when the
// category was not seen during fitting and the impute-missing policy is in
// effect; Cluster is 0 in that case.
type Assignment struct {
	Category string
	Cluster  int
	Known    bool
}

// EncoderModel is a complete snapshot of a fitted encoder, sufficient to
// restore it for transforming new data.
type EncoderModel struct {
	Name      string
	Kind      ModelKind
	Source    VectorSource
	CreatedAt time.Time
	UpdatedAt time.Time

	// Vectorization configuration.
	NGramMin  int
	NGramMax  int
	Lowercase bool
	Metric    Metric

	// Agglomerative configuration and state.
	Linkage       Linkage
	Criterion     Criterion
	Threshold     float64
	UnknownPolicy UnknownPolicy
	Clusters      []int
	Merges        []Merge

	// Distance-projection configuration and state. Basis holds the top-k
	// right singular vectors, one row per component.
	Components int
	Basis      [][]float64
	Singular   []float64

	// Fitted vocabulary (n-gram source) in index order.
	Vocabulary []string

	// Unique categories seen during fitting, sorted.
	Categories []string

	// Dense category vectors, populated for semantic models only. N-gram
	// vectors are recomputed from Vocabulary and Categories on restore.
	Dense [][]float64
}

// Fingerprint returns a content-based ID covering the model's identity:
// kind, source, configuration, and fitted categories.
func (m *EncoderModel) Fingerprint() ID {
	var sb strings.Builder
	sb.WriteString(string(m.Kind))
	sb.WriteByte('|')
	sb.WriteString(string(m.Source))
	sb.WriteByte('|')
	sb.WriteString(string(m.Metric))
	sb.WriteByte('|')
	sb.WriteString(string(m.Linkage))
	sb.WriteByte('|')
	for _, c := range m.Categories {
		sb.WriteString(c)
		sb.WriteByte(0)
	}
	return IDFromContent(sb.String())
}

// ModelInfo is a lightweight summary of a stored model, used for listings.
type ModelInfo struct {
	Name       string
	Kind       ModelKind
	Source     VectorSource
	Categories int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Info derives the listing summary from a full model.
func (m *EncoderModel) Info() *ModelInfo {
	return &ModelInfo{
		Name:       m.Name,
		Kind:       m.Kind,
		Source:     m.Source,
		Categories: len(m.Categories),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

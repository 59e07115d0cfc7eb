package ngram

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/dirtycat/core"
)

var (
	// ErrNotFitted indicates Transform was called before Fit.
	ErrNotFitted = errors.New("vectorizer is not fitted")

	// ErrEmptyVocabulary indicates fitting produced no n-grams at all.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)

// Vector is a sparse character n-gram count vector. Indices holds the
// vocabulary indices of the n-grams present, sorted ascending; Counts is
// parallel to Indices.
type Vector struct {
	Indices []uint32
	Counts  []uint32
}

// Vectorizer extracts character n-gram count vectors from strings.
// Fit builds the vocabulary from training values; Transform maps strings
// onto the fitted vocabulary, dropping n-grams it has never seen.
//
// A fitted Vectorizer is safe for concurrent Transform calls.
type Vectorizer struct {
	ngramRange core.NGramRange
	lowercase  bool
	vocabulary map[string]uint32
	terms      []string
	fitted     bool
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithNGramRange sets the n-gram length bounds. Default is 1..3.
func WithNGramRange(min, max int) Option {
	return func(v *Vectorizer) {
		v.ngramRange = core.NGramRange{Min: min, Max: max}
	}
}

// WithLowercase controls lowercasing before n-gram extraction.
// Default is true.
func WithLowercase(lowercase bool) Option {
	return func(v *Vectorizer) {
		v.lowercase = lowercase
	}
}

// New creates an unfitted vectorizer.
func New(opts ...Option) (*Vectorizer, error) {
	v := &Vectorizer{
		ngramRange: core.DefaultNGramRange(),
		lowercase:  true,
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := core.ValidateNGramRange(v.ngramRange); err != nil {
		return nil, err
	}
	return v, nil
}

// Restore rebuilds a fitted vectorizer from a stored vocabulary.
// The vocabulary slice must be in index order, as returned by Vocabulary.
func Restore(vocabulary []string, opts ...Option) (*Vectorizer, error) {
	v, err := New(opts...)
	if err != nil {
		return nil, err
	}
	v.terms = append([]string(nil), vocabulary...)
	v.vocabulary = make(map[string]uint32, len(vocabulary))
	for i, term := range vocabulary {
		v.vocabulary[term] = uint32(i)
	}
	v.fitted = true
	return v, nil
}

// Fit builds the vocabulary from the given values. The vocabulary is
// sorted lexicographically, so fitting is deterministic for a given set
// of values.
func (v *Vectorizer) Fit(values []string) error {
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, gram := range v.analyze(value) {
			seen[gram] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return fmt.Errorf("%w: no n-grams in %d values", ErrEmptyVocabulary, len(values))
	}

	terms := make([]string, 0, len(seen))
	for gram := range seen {
		terms = append(terms, gram)
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]uint32, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = uint32(i)
	}
	v.fitted = true
	return nil
}

// Transform maps each value onto the fitted vocabulary. N-grams not in the
// vocabulary are dropped. A value shorter than the minimum n-gram length
// yields an empty vector.
func (v *Vectorizer) Transform(values []string) ([]Vector, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}

	vectors := make([]Vector, len(values))
	for i, value := range values {
		counts := make(map[uint32]uint32)
		for _, gram := range v.analyze(value) {
			if idx, ok := v.vocabulary[gram]; ok {
				counts[idx]++
			}
		}
		vectors[i] = fromCounts(counts)
	}
	return vectors, nil
}

// FitTransform fits the vocabulary and transforms the same values.
func (v *Vectorizer) FitTransform(values []string) ([]Vector, error) {
	if err := v.Fit(values); err != nil {
		return nil, err
	}
	return v.Transform(values)
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// Fitted reports whether Fit has completed.
func (v *Vectorizer) Fitted() bool {
	return v.fitted
}

// analyze extracts all rune-level n-grams of the configured lengths.
func (v *Vectorizer) analyze(value string) []string {
	if v.lowercase {
		value = strings.ToLower(value)
	}
	runes := []rune(value)

	var grams []string
	for n := v.ngramRange.Min; n <= v.ngramRange.Max; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams = append(grams, string(runes[i:i+n]))
		}
	}
	return grams
}

func fromCounts(counts map[uint32]uint32) Vector {
	if len(counts) == 0 {
		return Vector{}
	}
	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	out := Vector{
		Indices: indices,
		Counts:  make([]uint32, len(indices)),
	}
	for i, idx := range indices {
		out.Counts[i] = counts[idx]
	}
	return out
}

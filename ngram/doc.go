// Package ngram provides character n-gram count vectorization for category
// strings.
//
// The Vectorizer follows the fit/transform contract: Fit builds a sorted
// vocabulary of n-grams from training values, Transform maps arbitrary
// strings onto that vocabulary as sparse count vectors. N-grams never seen
// during fitting are dropped at transform time.
package ngram

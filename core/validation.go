// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateMetric validates that a Metric has a supported value.
func ValidateMetric(m Metric) error {
	switch m {
	case MetricDice, MetricJaccard, MetricCosine:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidMetric, m)
}

// ValidateLinkage validates that a Linkage has a supported value.
func ValidateLinkage(l Linkage) error {
	switch l {
	case LinkageAverage, LinkageComplete, LinkageSingle:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidLinkage, l)
}

// ValidateCriterion validates that a Criterion has a supported value.
func ValidateCriterion(c Criterion) error {
	switch c {
	case CriterionMaxClust, CriterionDistance:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidCriterion, c)
}

// ValidateUnknownPolicy validates that an UnknownPolicy has a supported value.
func ValidateUnknownPolicy(p UnknownPolicy) error {
	switch p {
	case UnknownForceLinkage, UnknownImputeMissing:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidUnknownPolicy, p)
}

// ValidateKind validates that a ModelKind has a supported value.
func ValidateKind(k ModelKind) error {
	switch k {
	case KindAgglomerative, KindDistance:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKind, k)
}

// ValidateSource validates that a VectorSource has a supported value.
func ValidateSource(s VectorSource) error {
	switch s {
	case SourceNGram, SourceSemantic:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSource, s)
}

// ValidateNGramRange validates the n-gram length bounds.
func ValidateNGramRange(r NGramRange) error {
	if r.Min < 1 || r.Max < r.Min {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidNGramRange, r.Min, r.Max)
	}
	return nil
}

// ValidateModel validates an EncoderModel according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Kind, Source, and Metric must be supported values
//   - N-gram models must carry a valid n-gram range
//   - Agglomerative models must carry valid linkage, criterion, and policy
//   - Distance models must carry a basis matching the component count
//
// NOT validated (checked where it matters):
//   - Cluster label values (1-based labeling is an encoder concern)
//   - Basis orthogonality (a numeric property of the fitted SVD)
func ValidateModel(m *EncoderModel) error {
	if m == nil {
		return fmt.Errorf("%w: model is nil", ErrInvalidModel)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidModel, ErrEmptyModelName)
	}
	if err := ValidateKind(m.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if err := ValidateSource(m.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if err := ValidateMetric(m.Metric); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if m.Source == SourceNGram {
		if err := ValidateNGramRange(NGramRange{Min: m.NGramMin, Max: m.NGramMax}); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
	}
	switch m.Kind {
	case KindAgglomerative:
		if err := ValidateLinkage(m.Linkage); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
		if err := ValidateCriterion(m.Criterion); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
		if err := ValidateUnknownPolicy(m.UnknownPolicy); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
		if len(m.Clusters) != len(m.Categories) {
			return fmt.Errorf("%w: %d cluster labels for %d categories",
				ErrInvalidModel, len(m.Clusters), len(m.Categories))
		}
	case KindDistance:
		if m.Components < 1 || len(m.Basis) != m.Components {
			return fmt.Errorf("%w: %w", ErrInvalidModel, ErrInvalidComponents)
		}
		for _, row := range m.Basis {
			if len(row) != len(m.Categories) {
				return fmt.Errorf("%w: basis width %d does not match %d categories",
					ErrInvalidModel, len(row), len(m.Categories))
			}
		}
	}
	return nil
}

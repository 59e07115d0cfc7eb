package encoder

import (
	"log/slog"

	"github.com/poiesic/dirtycat/core"
	"github.com/poiesic/dirtycat/embed"
)

// settings carries the configuration shared by both encoders. Options that
// do not apply to an encoder kind are ignored by it (WithComponents by the
// agglomerative encoder, linkage options by the distance encoder).
type settings struct {
	metric        core.Metric
	metricSet     bool
	linkage       core.Linkage
	criterion     core.Criterion
	unknownPolicy core.UnknownPolicy
	ngramRange    core.NGramRange
	lowercase     bool
	components    int
	poolSize      int
	logger        *slog.Logger
	embedder      embed.Embedder
	monitor       FitMonitor
}

func defaultSettings() settings {
	return settings{
		metric:        core.MetricDice,
		linkage:       core.LinkageAverage,
		criterion:     core.CriterionMaxClust,
		unknownPolicy: core.UnknownForceLinkage,
		ngramRange:    core.DefaultNGramRange(),
		lowercase:     true,
		components:    2,
		logger:        slog.Default(),
		monitor:       &noopMonitor{},
	}
}

// Option configures an encoder.
type Option func(*settings) error

// WithMetric sets the distance metric. Default is Dice.
func WithMetric(m core.Metric) Option {
	return func(s *settings) error {
		if err := core.ValidateMetric(m); err != nil {
			return err
		}
		s.metric = m
		s.metricSet = true
		return nil
	}
}

// WithLinkage sets the cluster linkage method. Default is average.
func WithLinkage(l core.Linkage) Option {
	return func(s *settings) error {
		if err := core.ValidateLinkage(l); err != nil {
			return err
		}
		s.linkage = l
		return nil
	}
}

// WithCriterion sets the dendrogram cut criterion. Default is maxclust.
func WithCriterion(c core.Criterion) Option {
	return func(s *settings) error {
		if err := core.ValidateCriterion(c); err != nil {
			return err
		}
		s.criterion = c
		return nil
	}
}

// WithUnknownPolicy sets the handling of categories unseen during fitting.
// Default is force-linkage.
func WithUnknownPolicy(p core.UnknownPolicy) Option {
	return func(s *settings) error {
		if err := core.ValidateUnknownPolicy(p); err != nil {
			return err
		}
		s.unknownPolicy = p
		return nil
	}
}

// WithNGramRange sets the character n-gram length bounds. Default is 1..3.
func WithNGramRange(min, max int) Option {
	return func(s *settings) error {
		r := core.NGramRange{Min: min, Max: max}
		if err := core.ValidateNGramRange(r); err != nil {
			return err
		}
		s.ngramRange = r
		return nil
	}
}

// WithLowercase controls lowercasing before n-gram extraction.
// Default is true.
func WithLowercase(lowercase bool) Option {
	return func(s *settings) error {
		s.lowercase = lowercase
		return nil
	}
}

// WithComponents sets the projection dimension of the distance encoder.
// Default is 2.
func WithComponents(components int) Option {
	return func(s *settings) error {
		if components < 1 {
			return core.ErrInvalidComponents
		}
		s.components = components
		return nil
	}
}

// WithPoolSize sets the worker pool size for pairwise distance computation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *settings) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithEmbedder switches the encoder to the semantic vector source: category
// vectors come from the embedder and distances are cosine. Without an
// explicit WithMetric(cosine) the metric is switched automatically; any
// other explicit metric is rejected at construction.
func WithEmbedder(e embed.Embedder) Option {
	return func(s *settings) error {
		s.embedder = e
		return nil
	}
}

// WithMonitor sets a fit progress monitor. Default is a no-op.
func WithMonitor(m FitMonitor) Option {
	return func(s *settings) error {
		if m == nil {
			m = &noopMonitor{}
		}
		s.monitor = m
		return nil
	}
}

// apply folds options over defaults and reconciles the vector source.
func apply(opts []Option) (settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return s, err
		}
	}
	if s.embedder != nil {
		if s.metricSet && s.metric != core.MetricCosine {
			return s, ErrMetricMismatch
		}
		s.metric = core.MetricCosine
	}
	return s, nil
}

func (s *settings) source() core.VectorSource {
	if s.embedder != nil {
		return core.SourceSemantic
	}
	return core.SourceNGram
}

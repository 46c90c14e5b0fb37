package ingest

import (
	"go.uber.org/zap"
)

// DefaultNAValues are the raw literals treated as missing; blank cells included.
var DefaultNAValues = []string{"NA", ""}

const defaultBatchSize = 100

type settings struct {
	naValues  map[string]struct{}
	batchSize int
	logger    *zap.Logger
}

// Option configures an ingestor.
type Option func(*settings)

// WithNAValues replaces the set of literals read as missing.
func WithNAValues(values ...string) Option {
	return func(s *settings) {
		s.naValues = toSet(values)
	}
}

// WithBatchSize sets how many records are buffered before the sink is called.
func WithBatchSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		naValues:  toSet(DefaultNAValues),
		batchSize: defaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) isNA(v string) bool {
	_, ok := s.naValues[v]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

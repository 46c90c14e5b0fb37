package factory

import (
	"fmt"
	"sync"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
	"github.com/renjie/prism-stops/pkg/core/services/checks"
)

// CheckBuilder defines the contract for creating a specific check from config
type CheckBuilder func(spec domain.CheckSpec) (ports.Check, error)

// CheckFactory is the registry for all available check types
type CheckFactory struct {
	builders map[domain.CheckType]CheckBuilder
	mu       sync.RWMutex
}

var (
	instance *CheckFactory
	once     sync.Once
)

// GetCheckFactory returns the singleton instance
func GetCheckFactory() *CheckFactory {
	once.Do(func() {
		instance = NewCheckFactory()
	})
	return instance
}

// NewCheckFactory creates a new CheckFactory instance with built-in checks registered
// This constructor is useful for testing where you need isolated factory instances
func NewCheckFactory() *CheckFactory {
	f := &CheckFactory{
		builders: make(map[domain.CheckType]CheckBuilder),
	}
	// Register built-in checks
	f.Register(domain.CheckTypeSchema, buildSchemaCheck)
	f.Register(domain.CheckTypeRange, buildRangeCheck)
	f.Register(domain.CheckTypeMissingRate, buildMissingRateCheck)
	f.Register(domain.CheckTypeCategory, buildCategoryCheck)
	f.Register(domain.CheckTypeBoolean, buildBooleanCheck)
	f.Register(domain.CheckTypeUnique, buildUniqueCheck)
	return f
}

// Register adds or overrides a check builder
func (f *CheckFactory) Register(checkType domain.CheckType, builder CheckBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[checkType] = builder
}

// CreateCheck instantiates a check based on configuration
func (f *CheckFactory) CreateCheck(spec domain.CheckSpec) (ports.Check, error) {
	f.mu.RLock()
	builder, ok := f.builders[spec.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCheckType, spec.Type)
	}
	return builder(spec)
}

// NewBattery converts every spec, stopping at the first bad one.
func (f *CheckFactory) NewBattery(specs []domain.CheckSpec) ([]ports.Check, error) {
	out := make([]ports.Check, 0, len(specs))
	for i, spec := range specs {
		c, err := f.CreateCheck(spec)
		if err != nil {
			return nil, fmt.Errorf("check %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func buildSchemaCheck(spec domain.CheckSpec) (ports.Check, error) {
	required := domain.StandardColumnNames()
	if raw, ok := spec.Parameters["columns"]; ok {
		cols, err := getStrings(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters for SCHEMA check: columns %w", err)
		}
		required = cols
	}
	return &checks.SchemaCheck{Required: required, Issue: issueOr(spec, checks.IssueMissingColumns)}, nil
}

func buildRangeCheck(spec domain.CheckSpec) (ports.Check, error) {
	min, ok1 := getFloat(spec.Parameters["min"])
	max, ok2 := getFloat(spec.Parameters["max"])
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("invalid parameters for RANGE check: need min(number) and max(number)")
	}
	if min > max {
		return nil, fmt.Errorf("invalid parameters for RANGE check: min %g > max %g", min, max)
	}
	if spec.Column == "" {
		return nil, fmt.Errorf("RANGE check needs a column")
	}
	return &checks.RangeCheck{Column: spec.Column, Min: min, Max: max, Issue: issueOr(spec, "invalid_"+spec.Column)}, nil
}

func buildMissingRateCheck(spec domain.CheckSpec) (ports.Check, error) {
	threshold, ok := getFloat(spec.Parameters["threshold"])
	if !ok || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid parameters for MISSING_RATE check: need threshold in [0, 1]")
	}
	if spec.Column == "" {
		return nil, fmt.Errorf("MISSING_RATE check needs a column")
	}
	return &checks.MissingRateCheck{
		Column:    spec.Column,
		Threshold: threshold,
		Issue:     issueOr(spec, "high_"+spec.Column+"_missing"),
	}, nil
}

func buildCategoryCheck(spec domain.CheckSpec) (ports.Check, error) {
	if spec.Column == "" {
		return nil, fmt.Errorf("CATEGORY check needs a column")
	}
	levels := domain.RaceLevels()
	if raw, ok := spec.Parameters["levels"]; ok {
		l, err := getStrings(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters for CATEGORY check: levels %w", err)
		}
		levels = l
	}
	notCategorical := spec.Column + "_not_factor"
	if s, ok := spec.Parameters["not_categorical_issue"].(string); ok && s != "" {
		notCategorical = s
	}
	return &checks.CategoryCheck{
		Column:            spec.Column,
		Levels:            levels,
		NotCategoricalKey: notCategorical,
		UnexpectedKey:     issueOr(spec, "unexpected_"+spec.Column+"_levels"),
	}, nil
}

func buildBooleanCheck(spec domain.CheckSpec) (ports.Check, error) {
	if spec.Column == "" {
		return nil, fmt.Errorf("BOOLEAN check needs a column")
	}
	return &checks.BooleanCheck{Column: spec.Column, Issue: issueOr(spec, spec.Column+"_not_logical")}, nil
}

func buildUniqueCheck(spec domain.CheckSpec) (ports.Check, error) {
	if spec.Column == "" {
		return nil, fmt.Errorf("UNIQUE check needs a column")
	}
	return &checks.UniqueCheck{Column: spec.Column, Issue: issueOr(spec, "duplicate_"+spec.Column+"s")}, nil
}

func issueOr(spec domain.CheckSpec, fallback string) string {
	if spec.Issue != "" {
		return spec.Issue
	}
	return fallback
}

// getFloat accepts the numeric shapes produced by yaml and json decoding.
func getFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func getStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be a list of strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a list of strings, got %T", v)
	}
}

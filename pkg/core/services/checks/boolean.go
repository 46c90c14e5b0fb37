package checks

import (
	"fmt"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// BooleanCheck requires a boolean column whose values are bool or missing.
type BooleanCheck struct {
	Column string
	Issue  string
}

func (b *BooleanCheck) Name() string { return "boolean:" + b.Column }

func (b *BooleanCheck) Run(table *domain.Table) ports.CheckResult {
	result := ports.CheckResult{Check: b.Name()}
	col, ok := table.Column(b.Column)
	if !ok {
		return result
	}
	if col.Kind != domain.KindBoolean {
		result.Issues = map[string]domain.Issue{
			b.Issue: {Description: fmt.Sprintf("%s is %s, not boolean", b.Column, col.Kind)},
		}
		return result
	}

	bad := 0
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		if _, ok := v.(bool); !ok {
			bad++
		}
	}
	if bad > 0 {
		result.Issues = map[string]domain.Issue{
			b.Issue: {Description: fmt.Sprintf("%d non-boolean values in %s", bad, b.Column), Count: bad},
		}
	}
	return result
}

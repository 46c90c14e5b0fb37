package checks

import (
	"fmt"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// RangeCheck 实现数值范围检查
// 缺失值与缺失列不计入 (分别由缺失率检查和 schema 检查负责)
type RangeCheck struct {
	Column string
	Min    float64
	Max    float64
	Issue  string
}

func (r *RangeCheck) Name() string { return "range:" + r.Column }

// Run counts present values outside [Min, Max].
func (r *RangeCheck) Run(table *domain.Table) ports.CheckResult {
	result := ports.CheckResult{Check: r.Name()}
	col, ok := table.Column(r.Column)
	if !ok {
		return result
	}

	count := 0
	for _, v := range col.Values {
		f, ok := asFloat(v)
		if !ok {
			continue
		}
		if f < r.Min || f > r.Max {
			count++
		}
	}
	if count == 0 {
		return result
	}

	// 触发规则: 超出范围
	result.Issues = map[string]domain.Issue{
		r.Issue: {
			Description: fmt.Sprintf("%d values of %s outside [%g, %g]", count, r.Column, r.Min, r.Max),
			Count:       count,
		},
	}
	return result
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

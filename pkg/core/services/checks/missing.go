package checks

import (
	"fmt"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// MissingRateCheck 缺失率检查: 缺失比例严格大于 Threshold 时触发
type MissingRateCheck struct {
	Column    string
	Threshold float64 // 0..1
	Issue     string
}

func (m *MissingRateCheck) Name() string { return "missing_rate:" + m.Column }

func (m *MissingRateCheck) Run(table *domain.Table) ports.CheckResult {
	result := ports.CheckResult{Check: m.Name()}
	col, ok := table.Column(m.Column)
	if !ok {
		return result
	}
	rate := col.MissingRate()
	if rate <= m.Threshold {
		return result
	}
	result.Issues = map[string]domain.Issue{
		m.Issue: {
			Description: fmt.Sprintf("%.1f%% of %s missing (threshold %.1f%%)", rate*100, m.Column, m.Threshold*100),
			Count:       col.Missing(),
		},
	}
	return result
}

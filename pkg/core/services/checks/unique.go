package checks

import (
	"fmt"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// UniqueCheck 唯一性检查: 记录数减去不同取值数 (缺失值算作一个取值)
type UniqueCheck struct {
	Column string
	Issue  string
}

func (u *UniqueCheck) Name() string { return "unique:" + u.Column }

func (u *UniqueCheck) Run(table *domain.Table) ports.CheckResult {
	result := ports.CheckResult{Check: u.Name()}
	col, ok := table.Column(u.Column)
	if !ok {
		return result
	}
	distinct := make(map[any]struct{}, len(col.Values))
	for _, v := range col.Values {
		distinct[v] = struct{}{}
	}
	dups := len(col.Values) - len(distinct)
	if dups > 0 {
		result.Issues = map[string]domain.Issue{
			u.Issue: {Description: fmt.Sprintf("%d duplicate %s values", dups, u.Column), Count: dups},
		}
	}
	return result
}

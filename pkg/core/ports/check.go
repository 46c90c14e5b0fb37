package ports

import "github.com/renjie/prism-stops/pkg/core/domain"

// CheckResult 单个校验规则的结果
type CheckResult struct {
	Check  string                  // 规则名称
	Issues map[string]domain.Issue // 触发的问题 (为空表示通过)
}

// Passed reports whether the check raised no issue.
func (r CheckResult) Passed() bool {
	return len(r.Issues) == 0
}

// Check 校验规则接口
// 规则之间相互独立, 只读访问 table, 不得返回错误: 所有失败都是数据
type Check interface {
	Name() string
	Run(table *domain.Table) CheckResult
}

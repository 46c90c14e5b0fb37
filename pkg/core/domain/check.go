package domain

// CheckType 定义校验规则类型
type CheckType string

const (
	CheckTypeSchema      CheckType = "SCHEMA"       // 必需列检查
	CheckTypeRange       CheckType = "RANGE"        // 数值范围检查 (Min/Max)
	CheckTypeMissingRate CheckType = "MISSING_RATE" // 缺失率检查
	CheckTypeCategory    CheckType = "CATEGORY"     // 分类列及其取值检查
	CheckTypeBoolean     CheckType = "BOOLEAN"      // 布尔列检查
	CheckTypeUnique      CheckType = "UNIQUE"       // 唯一性检查
)

// CheckSpec 定义一个可配置的校验规则
// Validator 通过 factory 将其转换为可执行的 ports.Check
type CheckSpec struct {
	Type       CheckType      `json:"type" yaml:"type"`
	Column     string         `json:"column,omitempty" yaml:"column,omitempty"`
	Issue      string         `json:"issue,omitempty" yaml:"issue,omitempty"` // 触发时写入报告的问题名
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

package domain

import "time"

// Issue 数据质量问题
type Issue struct {
	Description string `json:"description"`
	Count       int    `json:"count,omitempty"` // 受影响的记录数 (或缺失列数)
}

// ValidationReport 校验报告, 创建后只读
type ValidationReport struct {
	RunID       string           `json:"run_id,omitempty"`
	Passed      bool             `json:"passed"`
	Issues      map[string]Issue `json:"issues"`
	RowCount    int              `json:"row_count"`
	ColumnCount int              `json:"column_count"`
	YearCounts  map[int]int      `json:"year_counts"`
	CreatedAt   time.Time        `json:"created_at"`
}

// IssueNames returns the issue keys; order is not meaningful.
func (r *ValidationReport) IssueNames() []string {
	names := make([]string, 0, len(r.Issues))
	for k := range r.Issues {
		names = append(names, k)
	}
	return names
}

package domain

// IngestionResult 导入结果统计
type IngestionResult struct {
	Year    int      `json:"year"`
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"` // 具体的错误信息
}

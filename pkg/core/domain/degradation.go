package domain

// DegradationReason 字段降级原因
type DegradationReason string

const (
	ReasonSentinel    DegradationReason = "SENTINEL"     // 哨兵值 (如 999, 1900-12-31)
	ReasonUnparseable DegradationReason = "UNPARSEABLE"  // 无法解析
	ReasonOutOfRange  DegradationReason = "OUT_OF_RANGE" // 超出合法范围
	ReasonUnknownCode DegradationReason = "UNKNOWN_CODE" // 未知编码
)

// Degradation 代表一个字段被降级为 missing
// 降级不是错误, 只用于统计观测, 不改变输出
type Degradation struct {
	RecordID string            `json:"record_id"`
	Field    string            `json:"field"`
	Raw      string            `json:"raw"`    // 原始文本
	Reason   DegradationReason `json:"reason"` // 降级原因
}

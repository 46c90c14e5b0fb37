package ports

import (
	"context"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

// UpsertStrategy 定义数据持久化时的冲突解决策略
// 仓储从不按 id 合并记录: 重复 id 必须保留下来交给校验发现
type UpsertStrategy string

const (
	// UpsertStrategyReplace 本批记录成为整张表, 先前运行的记录全部清除
	// 重新运行流水线时使用, 保证结果与最新一次运行一致
	UpsertStrategyReplace UpsertStrategy = "REPLACE"

	// UpsertStrategyKeepExisting 保留已有记录, 仅追加尚未存储的 id
	UpsertStrategyKeepExisting UpsertStrategy = "KEEP_EXISTING"
)

// StandardRecordRepository 标准化记录仓储接口
// 职责: 持久化标准化表, 并能以完整的列类型 (分类/布尔/日期) 读回
type StandardRecordRepository interface {
	// SaveBatch 批量保存 (需指定冲突策略)
	SaveBatch(ctx context.Context, records []domain.StandardRecord, strategy UpsertStrategy) error

	// FindByID 获取指定 id 的第一条记录, 不存在时返回 nil, nil
	FindByID(ctx context.Context, id string) (*domain.StandardRecord, error)

	// CountByYear 各年份记录数
	CountByYear(ctx context.Context) (map[int]int, error)

	// LoadTable 读回整张标准化表 (Validator 的输入)
	LoadTable(ctx context.Context) (*domain.Table, error)
}

// ReportRepository 校验报告仓储接口
type ReportRepository interface {
	// SaveReport 保存一份报告, 报告保存后不再修改
	SaveReport(ctx context.Context, report *domain.ValidationReport) error

	// LatestReport 获取最近一次保存的报告, 没有时返回 nil, nil
	LatestReport(ctx context.Context) (*domain.ValidationReport, error)
}

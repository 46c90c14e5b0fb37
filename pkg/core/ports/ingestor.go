package ports

import (
	"context"
	"io"

	"github.com/renjie/prism-stops/pkg/core/domain"
)

// RecordSink 接收摄入器分批产出的原始记录
type RecordSink func(ctx context.Context, batch []domain.RawRecord) error

// Ingestor 原始数据摄入接口
// 每个字段都保留为文本, 并附加分区年份; 格式错误的行计入 IngestionResult 而不是中断
type Ingestor interface {
	IngestStream(ctx context.Context, stream io.Reader, year int) (*domain.IngestionResult, error)
}

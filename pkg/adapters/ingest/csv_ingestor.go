package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// CsvStopIngestor 实现 Ingestor 接口
// 专门处理 CSV 格式的年度拦截记录文件
type CsvStopIngestor struct {
	downstream ports.RecordSink
	settings
}

// NewCsvStopIngestor 创建 CSV 摄入器实例
func NewCsvStopIngestor(downstream ports.RecordSink, opts ...Option) *CsvStopIngestor {
	return &CsvStopIngestor{
		downstream: downstream,
		settings:   newSettings(opts),
	}
}

// IngestStream 实现 Ingestor.IngestStream
// 逐行读取 CSV 流; 第一行必须是表头
func (c *CsvStopIngestor) IngestStream(ctx context.Context, stream io.Reader, year int) (*domain.IngestionResult, error) {
	reader := csv.NewReader(stream)
	// 字段数以表头为准, 不一致的行计为失败
	reader.FieldsPerRecord = 0

	result := &domain.IngestionResult{Year: year}

	// 1. Read Header
	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var buffer []domain.RawRecord

	// 2. Read Records
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.Total++
		if err != nil {
			if !errors.Is(err, csv.ErrFieldCount) {
				// 引号等结构性错误: 后续行无法可靠定位
				return result, fmt.Errorf("csv read error: %w", err)
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", result.Total+1, err)) // +1 for header
			continue
		}

		buffer = append(buffer, c.toRecord(headers, row, year))
		result.Success++

		if len(buffer) >= c.batchSize {
			if err := c.downstream(ctx, buffer); err != nil {
				return result, err
			}
			buffer = nil
		}
	}

	if len(buffer) > 0 {
		if err := c.downstream(ctx, buffer); err != nil {
			return result, err
		}
	}

	c.logger.Debug("csv partition ingested",
		zap.Int("year", year),
		zap.Int("total", result.Total),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (c *CsvStopIngestor) toRecord(headers, row []string, year int) domain.RawRecord {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" || i >= len(row) {
			continue
		}
		if c.isNA(row[i]) {
			continue
		}
		fields[h] = row[i]
	}
	return domain.RawRecord{Fields: fields, SourceYear: year}
}

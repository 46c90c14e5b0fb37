package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// JsonStopIngestor 实现 Ingestor 接口
// 处理扁平 JSON 对象 (数组或单个对象)
type JsonStopIngestor struct {
	// downstream 是数据流向的下一站, 通常是按年份收集分区的 sink
	downstream ports.RecordSink
	settings
}

func NewJsonStopIngestor(downstream ports.RecordSink, opts ...Option) *JsonStopIngestor {
	return &JsonStopIngestor{
		downstream: downstream,
		settings:   newSettings(opts),
	}
}

// IngestStream 实现 Ingestor.IngestStream
func (j *JsonStopIngestor) IngestStream(ctx context.Context, stream io.Reader, year int) (*domain.IngestionResult, error) {
	// 使用 bufio.Reader 预读首字节，避免消耗 Token
	bufStream := bufio.NewReader(stream)
	head, err := peekNonSpace(bufStream)
	if err != nil {
		if err == io.EOF {
			return &domain.IngestionResult{Year: year}, nil
		}
		return nil, fmt.Errorf("failed to peek start token: %w", err)
	}

	decoder := json.NewDecoder(bufStream)
	// 数字保留原始文本
	decoder.UseNumber()
	result := &domain.IngestionResult{Year: year}

	// Case 1: JSON Array [...]
	if head == '[' {
		// Consume '['
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return j.decodeArray(ctx, decoder, result, year)
	}

	// Case 2: Single JSON Object {...}
	if head == '{' {
		var obj map[string]any
		if err := decoder.Decode(&obj); err != nil {
			return nil, fmt.Errorf("failed to decode single object: %w", err)
		}

		result.Total++
		rec, err := j.mapToDomain(obj, year)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("mapping error: %v", err))
			return result, nil
		}
		if err := j.downstream(ctx, []domain.RawRecord{rec}); err != nil {
			return nil, err
		}
		result.Success++
		return result, nil
	}

	return nil, fmt.Errorf("unexpected JSON format (expected '[' or '{', got '%c')", head)
}

func (j *JsonStopIngestor) decodeArray(ctx context.Context, decoder *json.Decoder, result *domain.IngestionResult, year int) (*domain.IngestionResult, error) {
	var buffer []domain.RawRecord

	for decoder.More() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		var obj map[string]any
		if err := decoder.Decode(&obj); err != nil {
			return nil, fmt.Errorf("decode error inside array: %w", err)
		}

		result.Total++
		rec, err := j.mapToDomain(obj, year)
		if err != nil {
			// 策略：记录错误并继续
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d skipped: %v", result.Total, err))
			continue
		}

		buffer = append(buffer, rec)
		result.Success++

		// Flush buffer if full
		if len(buffer) >= j.batchSize {
			if err := j.downstream(ctx, buffer); err != nil {
				return result, err
			}
			buffer = nil
		}
	}

	// Flush remaining
	if len(buffer) > 0 {
		if err := j.downstream(ctx, buffer); err != nil {
			return result, err
		}
	}

	// Consume closing ']'
	if _, err := decoder.Token(); err != nil {
		return result, err
	}
	return result, nil
}

// mapToDomain 将扁平 JSON 对象转换为原始记录, 所有标量转为文本
func (j *JsonStopIngestor) mapToDomain(obj map[string]any, year int) (domain.RawRecord, error) {
	if obj == nil {
		return domain.RawRecord{}, fmt.Errorf("null item")
	}
	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		var text string
		switch val := v.(type) {
		case nil:
			continue
		case string:
			text = val
		case json.Number:
			text = val.String()
		case bool:
			text = strconv.FormatBool(val)
		default:
			return domain.RawRecord{}, fmt.Errorf("field %q: nested %T not supported", k, v)
		}
		if j.isNA(text) {
			continue
		}
		fields[k] = text
	}
	return domain.RawRecord{Fields: fields, SourceYear: year}, nil
}

func peekNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, r.UnreadByte()
	}
}

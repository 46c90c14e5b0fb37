package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// PartitionLoader 按年份加载原始数据文件
// 文件名由 pattern 与年份生成 (如 sqf-%d.csv), 扩展名 .json 使用 JSON 摄入器
type PartitionLoader struct {
	dir     string
	pattern string
	opts    []Option
	logger  *zap.Logger
}

// NewPartitionLoader creates a loader reading fmt.Sprintf(pattern, year) under dir.
func NewPartitionLoader(dir, pattern string, opts ...Option) *PartitionLoader {
	return &PartitionLoader{
		dir:     dir,
		pattern: pattern,
		opts:    opts,
		logger:  newSettings(opts).logger,
	}
}

// Path returns the file read for year.
func (l *PartitionLoader) Path(year int) string {
	return filepath.Join(l.dir, fmt.Sprintf(l.pattern, year))
}

// LoadYear reads one partition. A missing file is an error.
func (l *PartitionLoader) LoadYear(ctx context.Context, year int) ([]domain.RawRecord, *domain.IngestionResult, error) {
	path := l.Path(year)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open partition %d: %w", year, err)
	}
	defer f.Close()

	var records []domain.RawRecord
	sink := func(_ context.Context, batch []domain.RawRecord) error {
		records = append(records, batch...)
		return nil
	}

	var ing ports.Ingestor
	if strings.EqualFold(filepath.Ext(path), ".json") {
		ing = NewJsonStopIngestor(sink, l.opts...)
	} else {
		ing = NewCsvStopIngestor(sink, l.opts...)
	}

	res, err := ing.IngestStream(ctx, f, year)
	if err != nil {
		return nil, res, fmt.Errorf("ingest %s: %w", path, err)
	}
	if res.Failed > 0 {
		l.logger.Warn("rows skipped during ingestion",
			zap.Int("year", year),
			zap.String("path", path),
			zap.Int("failed", res.Failed),
			zap.Strings("errors", firstN(res.Errors, 5)))
	}
	l.logger.Info("partition loaded", zap.Int("year", year), zap.String("path", path), zap.Int("rows", len(records)))
	return records, res, nil
}

// Load reads every year concurrently. Any missing or unreadable file fails the load.
func (l *PartitionLoader) Load(ctx context.Context, years []int) (map[int][]domain.RawRecord, []*domain.IngestionResult, error) {
	var mu sync.Mutex
	partitions := make(map[int][]domain.RawRecord, len(years))
	results := make([]*domain.IngestionResult, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			recs, res, err := l.LoadYear(gctx, year)
			if err != nil {
				return err
			}
			mu.Lock()
			partitions[year] = recs
			mu.Unlock()
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return partitions, results, nil
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

// RecodingPipeline 多年份重编码流水线
// 各年份分区相互独立, 并发执行后按年份升序拼接
type RecodingPipeline struct {
	recoder          *YearRecoder
	policy           domain.FormatPolicy
	concurrencyLimit int
	logger           *zap.Logger
	observer         ports.Observer
	recoderOpts      []RecoderOption
}

// PipelineOption 定义配置选项函数 (Functional Option Pattern)
type PipelineOption func(*RecodingPipeline)

// WithPipelineFormatPolicy sets the year -> date format mapping.
func WithPipelineFormatPolicy(p domain.FormatPolicy) PipelineOption {
	return func(rp *RecodingPipeline) {
		rp.policy = p
	}
}

// WithRecoderOptions forwards options to the per-year recoder.
func WithRecoderOptions(opts ...RecoderOption) PipelineOption {
	return func(rp *RecodingPipeline) {
		rp.recoderOpts = append(rp.recoderOpts, opts...)
	}
}

// WithConcurrencyLimit 设置最大并发分区数 (默认 4)
func WithConcurrencyLimit(limit int) PipelineOption {
	return func(rp *RecodingPipeline) {
		if limit > 0 {
			rp.concurrencyLimit = limit
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(rp *RecodingPipeline) {
		if l != nil {
			rp.logger = l
		}
	}
}

// WithObserver receives partition timings and field degradations.
func WithObserver(o ports.Observer) PipelineOption {
	return func(rp *RecodingPipeline) {
		if o != nil {
			rp.observer = o
		}
	}
}

// NewRecodingPipeline 初始化流水线
func NewRecodingPipeline(opts ...PipelineOption) *RecodingPipeline {
	rp := &RecodingPipeline{
		policy:           domain.DefaultFormatPolicy(),
		concurrencyLimit: 4,
		logger:           zap.NewNop(),
		observer:         ports.NopObserver{},
	}
	for _, opt := range opts {
		opt(rp)
	}

	recoderOpts := append([]RecoderOption{
		WithFormatPolicy(rp.policy),
		WithRecoderObserver(rp.observer),
	}, rp.recoderOpts...)
	rp.recoder = NewYearRecoder(recoderOpts...)
	return rp
}

// Run recodes every partition and concatenates the results by ascending
// year, then input order. A partition year without a format policy fails
// the whole run before any partition is processed.
func (rp *RecodingPipeline) Run(ctx context.Context, partitions map[int][]domain.RawRecord) ([]domain.StandardRecord, error) {
	years := make([]int, 0, len(partitions))
	for y := range partitions {
		years = append(years, y)
	}
	sort.Ints(years)

	// 配置错误: 立即失败, 不猜测格式
	for _, y := range years {
		if _, err := rp.policy.Resolve(y); err != nil {
			rp.logger.Error("partition has no date format policy", zap.Int("year", y), zap.Error(err))
			return nil, fmt.Errorf("recoding pipeline: %w", err)
		}
	}

	logger := rp.logger
	if info, ok := domain.FromContext(ctx); ok {
		logger = logger.With(zap.String("run_id", info.RunID))
	}

	results := make([][]domain.StandardRecord, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rp.concurrencyLimit)

	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			// Context cancellation check (Fast fail)
			if err := gctx.Err(); err != nil {
				return err
			}

			records := partitions[year]
			start := time.Now()
			out, forceFields, err := rp.recoder.recodePartition(records, year)
			if err != nil {
				return fmt.Errorf("recode %d: %w", year, err)
			}
			elapsed := time.Since(start)
			results[i] = out

			rp.observer.ObservePartition(year, len(out), elapsed)
			logger.Info("partition recoded",
				zap.Int("year", year),
				zap.Int("rows", len(out)),
				zap.Strings("force_fields", forceFields),
				zap.Duration("elapsed", elapsed))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	standards := make([]domain.StandardRecord, 0, total)
	for _, r := range results {
		standards = append(standards, r...)
	}
	logger.Info("recoding finished", zap.Int("partitions", len(years)), zap.Int("rows", total))
	return standards, nil
}

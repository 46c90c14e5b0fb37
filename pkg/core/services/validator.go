package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
	"github.com/renjie/prism-stops/pkg/core/services/checks"
)

// Validator 基于规则列表的校验器
// 所有规则无条件执行, 互不短路; 结果合并为一份报告
type Validator struct {
	checks           []ports.Check
	specs            []domain.CheckSpec
	concurrencyLimit int
	logger           *zap.Logger
	observer         ports.Observer
	now              func() time.Time
}

// ValidatorOption 定义配置选项函数
type ValidatorOption func(*Validator)

// WithChecks replaces the default battery.
func WithChecks(cs ...ports.Check) ValidatorOption {
	return func(v *Validator) {
		v.checks = cs
	}
}

// WithValidatorLogger sets the structured logger.
func WithValidatorLogger(l *zap.Logger) ValidatorOption {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithValidatorObserver receives every finished report.
func WithValidatorObserver(o ports.Observer) ValidatorOption {
	return func(v *Validator) {
		if o != nil {
			v.observer = o
		}
	}
}

// WithCheckConcurrency bounds how many checks run at once (default 4).
func WithCheckConcurrency(limit int) ValidatorOption {
	return func(v *Validator) {
		if limit > 0 {
			v.concurrencyLimit = limit
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator 创建校验器, 默认使用 checks.DefaultBattery()
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		checks:           checks.DefaultBattery(),
		concurrencyLimit: 4,
		logger:           zap.NewNop(),
		observer:         ports.NopObserver{},
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every check against table. Data problems are reported, never
// returned; the only error is a nil table.
func (v *Validator) Validate(ctx context.Context, table *domain.Table) (*domain.ValidationReport, error) {
	if table == nil {
		return nil, fmt.Errorf("validate: %w", domain.ErrNilTable)
	}

	batch, err := v.battery()
	if err != nil {
		return nil, err
	}

	// 规则之间相互独立, 并发执行; 规则从不返回错误
	results := make([]ports.CheckResult, len(batch))
	var g errgroup.Group
	g.SetLimit(v.concurrencyLimit)
	for i, c := range batch {
		i, c := i, c
		g.Go(func() error {
			results[i] = c.Run(table)
			return nil
		})
	}
	g.Wait()

	report := &domain.ValidationReport{
		Issues:      make(map[string]domain.Issue),
		RowCount:    table.RowCount(),
		ColumnCount: table.ColumnCount(),
		YearCounts:  yearCounts(table),
		CreatedAt:   v.now().UTC(),
	}
	if info, ok := domain.FromContext(ctx); ok {
		report.RunID = info.RunID
	}

	// 合并: 各规则的问题名互不相同, 合并顺序无关
	for _, res := range results {
		for name, issue := range res.Issues {
			report.Issues[name] = issue
			v.logger.Warn("validation issue",
				zap.String("check", res.Check),
				zap.String("issue", name),
				zap.String("description", issue.Description),
				zap.Int("count", issue.Count))
		}
	}
	report.Passed = len(report.Issues) == 0

	v.observer.ObserveReport(report)
	v.logger.Info("validation finished",
		zap.Bool("passed", report.Passed),
		zap.Int("issues", len(report.Issues)),
		zap.Int("rows", report.RowCount),
		zap.Int("columns", report.ColumnCount))
	return report, nil
}

func yearCounts(table *domain.Table) map[int]int {
	counts := make(map[int]int)
	col, ok := table.Column(domain.ColYear)
	if !ok {
		return counts
	}
	for _, val := range col.Values {
		switch y := val.(type) {
		case int64:
			counts[int(y)]++
		case int:
			counts[y]++
		}
	}
	return counts
}
